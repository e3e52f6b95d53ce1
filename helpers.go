package iot

import (
	"encoding/json"
	"fmt"
)

// Decode unmarshals a response body delivered to a DoneFunc.
//
// Example:
//
//	client.GetDevices(ctx, func(body json.RawMessage) {
//	    if body == nil {
//	        return // completion after a failure
//	    }
//	    devices, err := iot.Decode[[]iot.Device](body)
//	    ...
//	}, nil)
func Decode[T any](body json.RawMessage) (T, error) {
	var v T
	if len(body) == 0 {
		return v, fmt.Errorf("iot: empty response body")
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("iot: failed to parse response: %w (body: %s)", err, truncatePreview(body))
	}
	return v, nil
}

// DecodeResult unmarshals the body of a completed call.
func DecodeResult[T any](r Result) (T, error) {
	if r.Failure != nil {
		var zero T
		return zero, r.Failure
	}
	return Decode[T](r.Body)
}

// truncatePreview returns a truncated string for error messages.
func truncatePreview(data []byte) string {
	s := string(data)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
