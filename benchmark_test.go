package iot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// BenchmarkInvoke measures one round trip through the call machinery.
func BenchmarkInvoke(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"d1","name":"truck","device_type":"dt1"}]`))
	}))
	defer server.Close()

	client, _ := NewClient(WithServiceURLs(server.URL+"/dms", server.URL+"/mms"), WithNotifier(NopNotifier{}))
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		client.GetDevices(ctx, nil, nil).Wait()
	}
}

// BenchmarkShapeMessageType measures field numbering of a wide message type.
func BenchmarkShapeMessageType(b *testing.B) {
	mt := &MessageType{Name: "wide", Fields: make([]MessageField, 64)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = shapeMessageType(mt)
	}
}

// BenchmarkErrorMessages measures classification of a structured error body.
func BenchmarkErrorMessages(b *testing.B) {
	body := []byte(`{"errors":[{"description":"a"},{"description":"b"},{"description":"c"}]}`)
	resp := &http.Response{StatusCode: 400, Header: http.Header{}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ErrorMessages(newFailurePayload(resp, body))
	}
}
