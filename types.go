package iot

// DataType is a primitive type message fields can be declared with.
type DataType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeviceType groups devices that exchange the same message types.
type DeviceType struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// Device is a registered device.
type Device struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name"`
	DeviceType string            `json:"device_type"`
	Token      string            `json:"token,omitempty"`
	Attributes []DeviceAttribute `json:"attributes,omitempty"`
}

// DeviceAttribute is a free-form key/value pair attached to a device.
type DeviceAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MessageDirection states which way a message type flows.
type MessageDirection string

// Message directions.
const (
	DirectionFromDevice    MessageDirection = "fromDevice"
	DirectionToDevice      MessageDirection = "toDevice"
	DirectionBidirectional MessageDirection = "bidirectional"
)

// MessageType describes the shape of messages a device type exchanges.
type MessageType struct {
	ID         string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	DeviceType string           `json:"device_type,omitempty"`
	Direction  MessageDirection `json:"direction,omitempty"`
	Fields     []MessageField   `json:"fields"`
}

// MessageField is one column of a message type. Position is 1-based and is
// assigned by AddMessageType from the field's index.
type MessageField struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// ServiceConfig holds the properties of the message management service.
type ServiceConfig map[string]any

// SQLProcessingService is the processing service MapTable configures.
const SQLProcessingService = "sql"

// ProcessingConfig maps the messages of one device type / message type pair
// onto a processing service.
type ProcessingConfig struct {
	DeviceType         string              `json:"deviceType"`
	MessageType        string              `json:"messageType"`
	ProcessingServices []ProcessingService `json:"processingServices"`
}

// ProcessingService is one entry of ProcessingConfig.ProcessingServices.
type ProcessingService struct {
	Name       string `json:"name"`
	Properties any    `json:"properties"`
}

// DataMode controls how the message management service acknowledges uploads.
type DataMode string

// Data upload modes.
const (
	ModeSync     DataMode = "sync"
	ModeAsync    DataMode = "async"
	ModeAsyncAck DataMode = "async-ack"
)

// DataUpload is the body of PostData.
type DataUpload struct {
	Mode        DataMode `json:"mode,omitempty"`
	MessageType string   `json:"messageType"`
	Messages    any      `json:"messages"`
}

// PushMethod selects the channel used to push messages to a device.
type PushMethod string

// Push methods.
const (
	PushHTTP      PushMethod = "http"
	PushWebSocket PushMethod = "ws"
)

// PushRequest is the body of PushData.
type PushRequest struct {
	Method      PushMethod `json:"method"`
	MessageType string     `json:"messageType"`
	Sender      string     `json:"sender"`
	Messages    any        `json:"messages"`
}
