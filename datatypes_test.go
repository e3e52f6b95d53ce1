package iot

import (
	"context"
	"net/http"
	"testing"
)

func TestClient_GetDataTypes(t *testing.T) {
	client, got := newCaptureClient(t, http.StatusOK, `[{"id":"1","name":"integer"},{"id":"6","name":"string"}]`)

	res := client.GetDataTypes(context.Background(), nil, nil).Wait()
	types, err := DecodeResult[[]DataType](res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Method != http.MethodGet || got.Path != "/dms/datatypes" {
		t.Errorf("request = %s %s, want GET /dms/datatypes", got.Method, got.Path)
	}
	if len(types) != 2 || types[1].Name != "string" {
		t.Errorf("types = %+v", types)
	}
}
