package iot

import (
	"context"
	"net/http"
)

// GetDevices lists all devices.
func (c *Client) GetDevices(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodGet, joinPath(c.DMSURL(), "devices"), nil, done, fail, opts...)
}

// AddDevice registers a device of a previously defined device type.
// Neither field is checked locally.
func (c *Client) AddDevice(ctx context.Context, name, deviceType string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	body := &Device{Name: name, DeviceType: deviceType}
	return c.Invoke(ctx, http.MethodPost, joinPath(c.DMSURL(), "devices"), body, done, fail, opts...)
}

// DeleteDevice deletes the device with the given ID.
func (c *Client) DeleteDevice(ctx context.Context, id string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if id == "" {
		return c.reject(ctx, ErrEmptyDeviceID, done, fail)
	}
	return c.Invoke(ctx, http.MethodDelete, joinPath(c.DMSURL(), "devices", id), nil, done, fail, opts...)
}
