package iot

import (
	"context"
	"net/http"
)

// GetDeviceTypes lists all device types.
func (c *Client) GetDeviceTypes(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodGet, joinPath(c.DMSURL(), "devicetypes"), nil, done, fail, opts...)
}

// AddDeviceType creates a device type with the given name. The name is sent
// as given; the service decides whether it is acceptable.
func (c *Client) AddDeviceType(ctx context.Context, name string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodPost, joinPath(c.DMSURL(), "devicetypes"), &DeviceType{Name: name}, done, fail, opts...)
}

// DeleteDeviceType deletes the device type with the given ID.
func (c *Client) DeleteDeviceType(ctx context.Context, id string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if id == "" {
		return c.reject(ctx, ErrEmptyDeviceTypeID, done, fail)
	}
	return c.Invoke(ctx, http.MethodDelete, joinPath(c.DMSURL(), "devicetypes", id), nil, done, fail, opts...)
}
