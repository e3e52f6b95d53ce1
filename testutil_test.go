package iot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// recordingNotifier collects every message it is asked to display.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// newTestClient starts a server for handler and returns a client whose DMS
// base URL is <server>/dms and MMS base URL is <server>/mms.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *recordingNotifier) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	notifier := &recordingNotifier{}
	all := append([]Option{
		WithServiceURLs(server.URL+"/dms", server.URL+"/mms"),
		WithNotifier(notifier),
	}, opts...)
	client, err := NewClient(all...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, notifier
}

// outcome captures the continuations of one call, in order.
type outcome struct {
	mu       sync.Mutex
	events   []string
	bodies   []string
	failures []*FailurePayload
}

func (o *outcome) done(body []byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if body == nil {
		o.events = append(o.events, "done(nil)")
	} else {
		o.events = append(o.events, "done")
	}
	o.bodies = append(o.bodies, string(body))
}

func (o *outcome) fail(p *FailurePayload) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "fail")
	o.failures = append(o.failures, p)
}

func (o *outcome) Done() DoneFunc {
	return func(body json.RawMessage) { o.done(body) }
}

func (o *outcome) Fail() FailFunc {
	return o.fail
}

// capturedRequest is what a capture server saw.
type capturedRequest struct {
	Method string
	Path   string
	Body   string
}

// newCaptureClient answers every request with status and respBody and
// records the request it received.
func newCaptureClient(t *testing.T, status int, respBody string) (*Client, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got.Method = r.Method
		got.Path = r.URL.EscapedPath()
		got.Body = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(respBody))
	})
	return client, got
}
