package iot

import (
	"context"
	"net/http"
)

// GetConfig retrieves the properties of the message management service.
func (c *Client) GetConfig(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodGet, joinPath(c.MMSURL(), "config"), nil, done, fail, opts...)
}

// SetConfig replaces the properties of the message management service.
// config is any JSON-serializable value, typically a ServiceConfig.
func (c *Client) SetConfig(ctx context.Context, config any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodPut, joinPath(c.MMSURL(), "config"), config, done, fail, opts...)
}

// MapTable customizes the database table messages of one device type and
// message type are stored in. properties are handed to the "sql"
// processing service unchanged.
func (c *Client) MapTable(ctx context.Context, deviceType, messageType string, properties any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodPut, joinPath(c.MMSURL(), "processing"), NewTableMapping(deviceType, messageType, properties), done, fail, opts...)
}

// NewTableMapping returns the processing configuration MapTable sends.
func NewTableMapping(deviceType, messageType string, properties any) *ProcessingConfig {
	return &ProcessingConfig{
		DeviceType:  deviceType,
		MessageType: messageType,
		ProcessingServices: []ProcessingService{
			{Name: SQLProcessingService, Properties: properties},
		},
	}
}
