package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	jmes "github.com/jmespath/go-jmespath"
	"gopkg.in/yaml.v3"
)

// print renders a response body, filtered by --query, in the --output format.
func (a *app) print(body []byte) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		// Not JSON: show it as is.
		_, err := fmt.Fprintln(a.out, string(body))
		return err
	}

	if a.query != "" {
		res, err := jmes.Search(a.query, doc)
		if err != nil {
			return fmt.Errorf("invalid query %q: %w", a.query, err)
		}
		doc = res
	}

	return render(a.out, a.format, doc)
}

func render(w io.Writer, format string, doc any) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("cannot render yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}

// loadDocument parses a JSON or YAML document given inline, as @file, or as
// "-" for stdin.
func loadDocument(arg string) (any, error) {
	var data []byte
	switch {
	case arg == "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("cannot read stdin: %w", err)
		}
		data = b
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", strings.TrimPrefix(arg, "@"), err)
		}
		data = b
	default:
		data = []byte(arg)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse document: %w", err)
	}
	return doc, nil
}

// decodeDocument loads a document and converts it into v through JSON, so
// that v's json tags apply to YAML input too.
func decodeDocument(arg string, v any) error {
	doc, err := loadDocument(arg)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cannot convert document: %w", err)
	}
	return json.Unmarshal(data, v)
}

// keyValues turns key=value arguments into a map.
func keyValues(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, kv := range args {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", kv)
		}
		out[k] = v
	}
	return out, nil
}
