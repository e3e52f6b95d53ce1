package iot

import (
	"context"
	"net/http"
)

// GetMessageTypes lists all message types.
func (c *Client) GetMessageTypes(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodGet, joinPath(c.DMSURL(), "messagetypes"), nil, done, fail, opts...)
}

// AddMessageType creates a message type.
//
// The request carries a copy of mt whose fields are numbered in order:
// fields[i].Position is always set to i+1, whatever it was before. A nil
// Fields slice is sent as an empty list.
func (c *Client) AddMessageType(ctx context.Context, mt *MessageType, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if mt == nil {
		return c.reject(ctx, ErrNilMessageType, done, fail)
	}
	return c.Invoke(ctx, http.MethodPost, joinPath(c.DMSURL(), "messagetypes"), shapeMessageType(mt), done, fail, opts...)
}

// DeleteMessageType deletes the message type with the given ID.
func (c *Client) DeleteMessageType(ctx context.Context, id string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	if id == "" {
		return c.reject(ctx, ErrEmptyMessageTypeID, done, fail)
	}
	return c.Invoke(ctx, http.MethodDelete, joinPath(c.DMSURL(), "messagetypes", id), nil, done, fail, opts...)
}

func shapeMessageType(mt *MessageType) *MessageType {
	shaped := *mt
	shaped.Fields = make([]MessageField, len(mt.Fields))
	copy(shaped.Fields, mt.Fields)
	for i := range shaped.Fields {
		shaped.Fields[i].Position = i + 1
	}
	return &shaped
}
