package iot

import "context"

// IOTClient defines the operations of the IoT services client.
// Client implements this interface, enabling mocking for tests.
type IOTClient interface {
	// ============================================================================
	// Service Endpoints
	// ============================================================================

	SetServiceURL(dmsURL, mmsURL string)
	DMSURL() string
	MMSURL() string
	Endpoints() ServiceEndpoints

	// ============================================================================
	// Device Management
	// ============================================================================

	GetDataTypes(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	GetDeviceTypes(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	AddDeviceType(ctx context.Context, name string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	DeleteDeviceType(ctx context.Context, id string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	GetMessageTypes(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	AddMessageType(ctx context.Context, mt *MessageType, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	DeleteMessageType(ctx context.Context, id string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	GetDevices(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	AddDevice(ctx context.Context, name, deviceType string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	DeleteDevice(ctx context.Context, id string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call

	// ============================================================================
	// Message Management
	// ============================================================================

	GetConfig(ctx context.Context, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	SetConfig(ctx context.Context, config any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	MapTable(ctx context.Context, deviceType, messageType string, properties any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	GetData(ctx context.Context, device string, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	PostData(ctx context.Context, device string, mode DataMode, messageType string, messages any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	PushData(ctx context.Context, device string, method PushMethod, sender, messageType string, messages any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call

	// ============================================================================
	// OAuth
	// ============================================================================

	Authenticate(ctx context.Context, id, secret, scope string, done TokenFunc, fail FailFunc) *Call
	RequestToken(ctx context.Context, creds ClientCredentials) (*TokenResponse, error)
	SetToken(token string)
	Token() string

	// ============================================================================
	// Low level
	// ============================================================================

	Invoke(ctx context.Context, method, rawURL string, body any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call
	Report(ctx context.Context, p *FailurePayload)
}

// Compile-time check that Client implements IOTClient.
var _ IOTClient = (*Client)(nil)
