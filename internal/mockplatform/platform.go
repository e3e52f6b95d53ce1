// Package mockplatform is an in-memory stand-in for the IoT services: the
// device management service, the message management service and the OAuth
// token endpoint. It backs end-to-end tests and `iotctl mock-server`.
package mockplatform

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Mount points of the two services.
const (
	DMSPrefix = "/dms"
	MMSPrefix = "/mms"
	TokenPath = "/oauth/token"
)

// DataType mirrors a DMS data type.
type DataType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DeviceType mirrors a DMS device type.
type DeviceType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// Device mirrors a DMS device.
type Device struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DeviceType string `json:"device_type"`
}

// Field mirrors one field of a message type.
type Field struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// MessageType mirrors a DMS message type.
type MessageType struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DeviceType string  `json:"device_type,omitempty"`
	Direction  string  `json:"direction,omitempty"`
	Fields     []Field `json:"fields"`
}

// ProcessingService mirrors one processing service entry.
type ProcessingService struct {
	Name       string          `json:"name"`
	Properties json.RawMessage `json:"properties"`
}

// Processing mirrors the body of a table mapping.
type Processing struct {
	DeviceType         string              `json:"deviceType"`
	MessageType        string              `json:"messageType"`
	ProcessingServices []ProcessingService `json:"processingServices"`
}

// Upload is one batch of messages a device sent.
type Upload struct {
	Mode        string          `json:"mode,omitempty"`
	MessageType string          `json:"messageType"`
	Messages    json.RawMessage `json:"messages"`
}

// Push is one batch of messages pushed to a device.
type Push struct {
	Method      string          `json:"method"`
	MessageType string          `json:"messageType"`
	Sender      string          `json:"sender"`
	Messages    json.RawMessage `json:"messages"`
}

// RecordedRequest is a request the platform received.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Option configures a Platform.
type Option func(*Platform)

// WithClient registers OAuth client credentials accepted by the token endpoint.
func WithClient(id, secret string) Option {
	return func(p *Platform) {
		p.clients[id] = secret
	}
}

// WithRequireToken makes DMS and MMS routes reject requests without a bearer
// token issued by the token endpoint.
func WithRequireToken() Option {
	return func(p *Platform) {
		p.requireToken = true
	}
}

// WithDataTypes replaces the built-in data types.
func WithDataTypes(types ...DataType) Option {
	return func(p *Platform) {
		p.dataTypes = types
	}
}

// Platform holds the in-memory state of both services.
type Platform struct {
	mu           sync.Mutex
	clients      map[string]string
	tokens       map[string]struct{}
	requireToken bool

	dataTypes    []DataType
	deviceTypes  []DeviceType
	messageTypes []MessageType
	devices      []Device
	config       map[string]any
	mappings     []Processing
	uploads      map[string][]Upload
	outbox       map[string][]Push
	requests     []RecordedRequest
}

// New returns an empty platform.
func New(opts ...Option) *Platform {
	p := &Platform{
		clients: map[string]string{},
		tokens:  map[string]struct{}{},
		dataTypes: []DataType{
			{ID: "1", Name: "integer"},
			{ID: "2", Name: "long"},
			{ID: "3", Name: "float"},
			{ID: "4", Name: "double"},
			{ID: "5", Name: "boolean"},
			{ID: "6", Name: "string"},
			{ID: "7", Name: "binary"},
			{ID: "8", Name: "date"},
		},
		config:  map[string]any{},
		uploads: map[string][]Upload{},
		outbox:  map[string][]Push{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handler returns the HTTP surface of the platform.
func (p *Platform) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(echoRequestID)
	r.Use(p.record)

	r.Post(TokenPath, p.issueToken)

	r.Route(DMSPrefix, func(r chi.Router) {
		r.Use(p.authorize)
		r.Get("/datatypes", p.listDataTypes)
		r.Get("/devicetypes", p.listDeviceTypes)
		r.Post("/devicetypes", p.addDeviceType)
		r.Delete("/devicetypes/{id}", p.deleteDeviceType)
		r.Get("/messagetypes", p.listMessageTypes)
		r.Post("/messagetypes", p.addMessageType)
		r.Delete("/messagetypes/{id}", p.deleteMessageType)
		r.Get("/devices", p.listDevices)
		r.Post("/devices", p.addDevice)
		r.Delete("/devices/{id}", p.deleteDevice)
	})

	r.Route(MMSPrefix, func(r chi.Router) {
		r.Use(p.authorize)
		r.Get("/config", p.getConfig)
		r.Put("/config", p.putConfig)
		r.Put("/processing", p.putProcessing)
		r.Get("/data/{device}", p.getData)
		r.Post("/data/{device}", p.postData)
		r.Post("/push/{device}", p.pushData)
	})

	return r
}

// Requests returns every request received so far, oldest first.
func (p *Platform) Requests() []RecordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]RecordedRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// LastRequest returns the most recent request, or false if none arrived.
func (p *Platform) LastRequest() (RecordedRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.requests) == 0 {
		return RecordedRequest{}, false
	}
	return p.requests[len(p.requests)-1], true
}

// Uploads returns the message batches a device has sent.
func (p *Platform) Uploads(device string) []Upload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Upload(nil), p.uploads[device]...)
}

// Mappings returns the table mappings configured so far.
func (p *Platform) Mappings() []Processing {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Processing(nil), p.mappings...)
}

// IssueToken mints a bearer token without going through the token endpoint.
func (p *Platform) IssueToken() string {
	token := uuid.NewString()
	p.mu.Lock()
	p.tokens[token] = struct{}{}
	p.mu.Unlock()
	return token
}

func (p *Platform) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		p.mu.Lock()
		p.requests = append(p.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		p.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEntry struct {
	Description string `json:"description"`
}

// writeErrors renders the structured error body clients display entry by entry.
func writeErrors(w http.ResponseWriter, status int, descriptions ...string) {
	entries := make([]errorEntry, 0, len(descriptions))
	for _, d := range descriptions {
		entries = append(entries, errorEntry{Description: d})
	}
	writeJSON(w, status, map[string]any{"errors": entries})
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
