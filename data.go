package iot

import (
	"context"
	"net/http"
)

// GetData receives the messages that have been pushed to a device.
func (c *Client) GetData(ctx context.Context, device string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if device == "" {
		return c.reject(ctx, ErrEmptyDeviceID, done, fail)
	}
	return c.Invoke(ctx, http.MethodGet, joinPath(c.MMSURL(), "data", device), nil, done, fail, opts...)
}

// PostData sends messages on behalf of a device.
// mode may be empty, in which case the service default applies.
func (c *Client) PostData(ctx context.Context, device string, mode DataMode, messageType string, messages any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if device == "" {
		return c.reject(ctx, ErrEmptyDeviceID, done, fail)
	}
	body := &DataUpload{
		Mode:        mode,
		MessageType: messageType,
		Messages:    messages,
	}
	return c.Invoke(ctx, http.MethodPost, joinPath(c.MMSURL(), "data", device), body, done, fail, opts...)
}

// PushData pushes messages to a device over the given channel.
func (c *Client) PushData(ctx context.Context, device string, method PushMethod, sender, messageType string, messages any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if device == "" {
		return c.reject(ctx, ErrEmptyDeviceID, done, fail)
	}
	body := &PushRequest{
		Method:      method,
		MessageType: messageType,
		Sender:      sender,
		Messages:    messages,
	}
	return c.Invoke(ctx, http.MethodPost, joinPath(c.MMSURL(), "push", device), body, done, fail, opts...)
}
