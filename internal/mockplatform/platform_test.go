package mockplatform

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func do(t *testing.T, srv *httptest.Server, method, path, body string, header http.Header) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	for k, vs := range header {
		req.Header[k] = vs
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func TestPlatform_Token(t *testing.T) {
	p := New(WithClient("app", "secret"))
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	form := url.Values{"grant_type": {"client_credentials"}}.Encode()
	formHeader := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}

	tests := []struct {
		name   string
		user   string
		pass   string
		body   string
		header http.Header
		want   int
	}{
		{"valid", "app", "secret", form, formHeader, http.StatusOK},
		{"bad secret", "app", "nope", form, formHeader, http.StatusUnauthorized},
		{"json body", "app", "secret", `{}`, http.Header{"Content-Type": {"application/json"}}, http.StatusBadRequest},
		{"wrong grant", "app", "secret", "grant_type=password", formHeader, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.header.Clone()
			req, _ := http.NewRequest(http.MethodPost, "/", nil)
			req.SetBasicAuth(tt.user, tt.pass)
			h.Set("Authorization", req.Header.Get("Authorization"))

			status, body := do(t, srv, http.MethodPost, TokenPath, tt.body, h)
			if status != tt.want {
				t.Errorf("status = %d, want %d (%s)", status, tt.want, body)
			}
			if status == http.StatusOK && !strings.Contains(body, `"access_token"`) {
				t.Errorf("body = %s", body)
			}
		})
	}

	t.Run("missing basic auth", func(t *testing.T) {
		status, _ := do(t, srv, http.MethodPost, TokenPath, form, formHeader)
		if status != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})
}

func TestPlatform_RequireToken(t *testing.T) {
	p := New(WithRequireToken())
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	if status, _ := do(t, srv, http.MethodGet, DMSPrefix+"/devices", "", nil); status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}

	token := p.IssueToken()
	status, _ := do(t, srv, http.MethodGet, DMSPrefix+"/devices", "", http.Header{"Authorization": {"Bearer " + token}})
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestPlatform_DeviceTypes(t *testing.T) {
	p := New()
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	status, body := do(t, srv, http.MethodPost, DMSPrefix+"/devicetypes", `{"name":"truck"}`, nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	var dt DeviceType
	json.Unmarshal([]byte(body), &dt)

	if status, _ := do(t, srv, http.MethodPost, DMSPrefix+"/devicetypes", `{"name":"truck"}`, nil); status != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", status)
	}

	do(t, srv, http.MethodPost, DMSPrefix+"/devices", `{"name":"a","device_type":"`+dt.ID+`"}`, nil)
	do(t, srv, http.MethodPost, DMSPrefix+"/devices", `{"name":"b","device_type":"`+dt.ID+`"}`, nil)

	status, body = do(t, srv, http.MethodDelete, DMSPrefix+"/devicetypes/"+dt.ID, "", nil)
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", status)
	}
	var resp struct {
		Errors []struct {
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(resp.Errors) != 2 {
		t.Errorf("errors = %+v, want one per device", resp.Errors)
	}
}

func TestPlatform_MessageTypePositions(t *testing.T) {
	p := New()
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	status, _ := do(t, srv, http.MethodPost, DMSPrefix+"/messagetypes",
		`{"name":"m","fields":[{"position":2,"name":"a","type":"string"}]}`, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}

	status, _ = do(t, srv, http.MethodPost, DMSPrefix+"/messagetypes",
		`{"name":"m","fields":[{"position":1,"name":"a","type":"string"}]}`, nil)
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
}

func TestPlatform_EscapedIDs(t *testing.T) {
	p := New()
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	status, body := do(t, srv, http.MethodDelete, DMSPrefix+"/devices/a%2Fb", "", nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	if !strings.Contains(body, "device a/b not found") {
		t.Errorf("body = %s", body)
	}

	last, ok := p.LastRequest()
	if !ok || last.Path != DMSPrefix+"/devices/a%2Fb" {
		t.Errorf("last request = %+v", last)
	}
}

func TestPlatform_Data(t *testing.T) {
	p := New()
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	_, body := do(t, srv, http.MethodPost, DMSPrefix+"/devicetypes", `{"name":"t"}`, nil)
	var dt DeviceType
	json.Unmarshal([]byte(body), &dt)
	_, body = do(t, srv, http.MethodPost, DMSPrefix+"/messagetypes", `{"name":"m","fields":[]}`, nil)
	var mt MessageType
	json.Unmarshal([]byte(body), &mt)
	_, body = do(t, srv, http.MethodPost, DMSPrefix+"/devices", `{"name":"d","device_type":"`+dt.ID+`"}`, nil)
	var d Device
	json.Unmarshal([]byte(body), &d)

	upload := `{"mode":"async-ack","messageType":"` + mt.ID + `","messages":[{"a":1},{"a":2}]}`
	status, body := do(t, srv, http.MethodPost, MMSPrefix+"/data/"+d.ID, upload, nil)
	if status != http.StatusAccepted || !strings.Contains(body, "2 messages consumed") {
		t.Errorf("status = %d, body = %s", status, body)
	}
	if len(p.Uploads(d.ID)) != 1 {
		t.Errorf("uploads = %+v", p.Uploads(d.ID))
	}

	if status, _ := do(t, srv, http.MethodPost, MMSPrefix+"/push/"+d.ID, `{"method":"mqtt","messages":[]}`, nil); status != http.StatusBadRequest {
		t.Errorf("push with unknown method status = %d, want 400", status)
	}
	do(t, srv, http.MethodPost, MMSPrefix+"/push/"+d.ID, `{"method":"http","messageType":"`+mt.ID+`","sender":"s","messages":[{"x":1}]}`, nil)

	_, body = do(t, srv, http.MethodGet, MMSPrefix+"/data/"+d.ID, "", nil)
	var pending []Push
	json.Unmarshal([]byte(body), &pending)
	if len(pending) != 1 {
		t.Errorf("pending = %+v", pending)
	}
	_, body = do(t, srv, http.MethodGet, MMSPrefix+"/data/"+d.ID, "", nil)
	if strings.TrimSpace(body) != "[]" {
		t.Errorf("outbox not drained: %s", body)
	}
}

func TestPlatform_Config(t *testing.T) {
	p := New()
	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	status, body := do(t, srv, http.MethodPut, MMSPrefix+"/config", `"x"`, nil)
	if status != http.StatusBadRequest || strings.HasPrefix(body, "{") {
		t.Errorf("status = %d, body = %q, want plain-text 400", status, body)
	}

	do(t, srv, http.MethodPut, MMSPrefix+"/config", `{"retention":30}`, nil)
	_, body = do(t, srv, http.MethodGet, MMSPrefix+"/config", "", nil)
	if !strings.Contains(body, `"retention":30`) {
		t.Errorf("config = %s", body)
	}
}
