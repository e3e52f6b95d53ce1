package iot

import (
	"context"
	"net/http"
	"reflect"
	"testing"
)

func TestClient_GetDevices(t *testing.T) {
	client, got := newCaptureClient(t, http.StatusOK, `[{"id":"d1","name":"truck","device_type":"dt1"}]`)

	devices, err := DecodeResult[[]Device](client.GetDevices(context.Background(), nil, nil).Wait())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Method != http.MethodGet || got.Path != "/dms/devices" {
		t.Errorf("request = %s %s", got.Method, got.Path)
	}
	if len(devices) != 1 || devices[0].DeviceType != "dt1" {
		t.Errorf("devices = %+v", devices)
	}
}

func TestClient_GetDevices_StructuredErrors(t *testing.T) {
	client, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"code":400,"description":"x"},{"code":400,"description":"y"}]}`))
	})

	client.GetDevices(context.Background(), nil, nil).Wait()
	if got := notifier.Messages(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("messages = %q, want [x y]", got)
	}
}

func TestClient_AddDevice(t *testing.T) {
	t.Run("posts name and device type", func(t *testing.T) {
		client, got := newCaptureClient(t, http.StatusOK, `{"id":"d1"}`)

		res := client.AddDevice(context.Background(), "truck", "dt1", nil, nil).Wait()
		if !res.OK() {
			t.Fatalf("unexpected failure: %v", res.Err())
		}
		if got.Method != http.MethodPost || got.Path != "/dms/devices" {
			t.Errorf("request = %s %s", got.Method, got.Path)
		}
		if got.Body != `{"name":"truck","device_type":"dt1"}` {
			t.Errorf("body = %s", got.Body)
		}
	})

	t.Run("empty fields are sent", func(t *testing.T) {
		client, got := newCaptureClient(t, http.StatusBadRequest, `{"errors":[{"description":"name is required"}]}`)

		var o outcome
		res := client.AddDevice(context.Background(), "", "", o.Done(), o.Fail()).Wait()
		if got.Method != http.MethodPost {
			t.Fatalf("request not sent")
		}
		if got.Body != `{"name":"","device_type":""}` {
			t.Errorf("body = %s", got.Body)
		}
		if IsValidation(res.Err()) {
			t.Error("IsValidation = true, want a service failure")
		}
		if !reflect.DeepEqual(o.events, []string{"fail", "done(nil)"}) {
			t.Errorf("events = %v", o.events)
		}
	})
}

func TestClient_DeleteDevice(t *testing.T) {
	t.Run("escapes id", func(t *testing.T) {
		client, got := newCaptureClient(t, http.StatusNoContent, "")

		client.DeleteDevice(context.Background(), "a/b", nil, nil).Wait()
		if got.Method != http.MethodDelete || got.Path != "/dms/devices/a%2Fb" {
			t.Errorf("request = %s %s", got.Method, got.Path)
		}
	})

	t.Run("not found reports once", func(t *testing.T) {
		client, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"description":"device d9 not found"}]}`))
		})

		var o outcome
		res := client.DeleteDevice(context.Background(), "d9", o.Done(), nil).Wait()
		if !IsNotFound(res.Err()) {
			t.Errorf("error = %v, want not found", res.Err())
		}
		if got := notifier.Messages(); !reflect.DeepEqual(got, []string{"device d9 not found"}) {
			t.Errorf("messages = %v", got)
		}
		if !reflect.DeepEqual(o.events, []string{"done(nil)"}) {
			t.Errorf("events = %v", o.events)
		}
	})
}
