package iot

import (
	"context"
	"net/http"
)

// GetDataTypes lists the data types message fields can use.
func (c *Client) GetDataTypes(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	return c.Invoke(ctx, http.MethodGet, joinPath(c.DMSURL(), "datatypes"), nil, done, fail, opts...)
}
