package iot

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLoggingTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := NewLoggingClient(logger,
		WithServiceURLs(server.URL+"/dms", server.URL+"/mms"),
		WithNotifier(NopNotifier{}),
	)
	if err != nil {
		t.Fatalf("NewLoggingClient: %v", err)
	}

	client.DeleteDevice(context.Background(), "d1", nil, nil).Wait()

	out := buf.String()
	for _, want := range []string{"api_request", "api_response", "http_request", "http_response", "service=dms", "status=404", "request_id=", "method=DELETE"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("404 not logged at warn level:\n%s", out)
	}
}

func TestLoggingTransport_NilBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	transport := &LoggingTransport{}
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	resp.Body.Close()
}

func TestClient_LogWithoutLogger(t *testing.T) {
	client, _ := NewClient()
	// Must not panic.
	client.LogRequest(context.Background(), http.MethodGet, "https://x")
	client.LogResponse(context.Background(), http.MethodGet, "https://x", 200, time.Millisecond, nil)
}

func TestStatusLevel(t *testing.T) {
	tests := []struct {
		status int
		err    error
		want   slog.Level
	}{
		{200, nil, slog.LevelDebug},
		{304, nil, slog.LevelDebug},
		{404, nil, slog.LevelWarn},
		{500, nil, slog.LevelError},
		{0, errors.New("refused"), slog.LevelError},
	}
	for _, tt := range tests {
		if got := statusLevel(tt.status, tt.err); got != tt.want {
			t.Errorf("statusLevel(%d, %v) = %v, want %v", tt.status, tt.err, got, tt.want)
		}
	}
}

func TestClient_serviceOf(t *testing.T) {
	client, _ := NewClient(WithServiceURLs("https://h/dms", "https://h/mms"))
	tests := map[string]string{
		"https://h/dms/devices": "dms",
		"https://h/mms/data/d1": "mms",
		"https://h/oauth/token": "oauth",
		"https://elsewhere/x":   "other",
	}
	for url, want := range tests {
		if got := client.serviceOf(url); got != want {
			t.Errorf("serviceOf(%q) = %q, want %q", url, got, want)
		}
	}
}
