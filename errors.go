package iot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Sentinel errors returned by the IoT client.
// Validation errors are delivered through the failure continuation; no
// request is sent when one occurs.
var (
	// Configuration errors
	ErrEmptyServiceURL = errors.New("iot: service URL cannot be empty")

	// Authentication errors
	ErrEmptyCredentials = errors.New("iot: client ID cannot be empty")

	// Device management validation errors
	ErrEmptyDeviceID      = errors.New("iot: device ID cannot be empty")
	ErrEmptyDeviceTypeID  = errors.New("iot: device type ID cannot be empty")
	ErrEmptyMessageTypeID = errors.New("iot: message type ID cannot be empty")
	ErrNilMessageType     = errors.New("iot: message type cannot be nil")
)

var validationErrors = []error{
	ErrEmptyServiceURL,
	ErrEmptyCredentials,
	ErrEmptyDeviceID,
	ErrEmptyDeviceTypeID,
	ErrEmptyMessageTypeID,
	ErrNilMessageType,
}

// Text codes attached to go-errors envelopes.
const (
	TextCodeBadInput        = "IOT_BAD_INPUT"
	TextCodeUnauthorized    = "IOT_UNAUTHORIZED"
	TextCodeForbidden       = "IOT_FORBIDDEN"
	TextCodeNotFound        = "IOT_NOT_FOUND"
	TextCodeConflict        = "IOT_CONFLICT"
	TextCodeRateLimited     = "IOT_RATE_LIMITED"
	TextCodeExternalFailure = "IOT_EXTERNAL_FAILURE"
	TextCodeInternal        = "IOT_INTERNAL_ERROR"
)

// UnknownErrorMessage is displayed when a failure carries no usable information.
const UnknownErrorMessage = "Unknown error!"

// ErrorKind classifies the information carried by a FailurePayload.
type ErrorKind int

const (
	// UnknownError carries no usable error information.
	UnknownError ErrorKind = iota
	// RawTextError carries an opaque response body.
	RawTextError
	// StructuredAPIError carries a list of described errors.
	StructuredAPIError
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case StructuredAPIError:
		return "structured"
	case RawTextError:
		return "raw_text"
	default:
		return "unknown"
	}
}

// ErrorDetail is one entry of a structured API error response.
// Only the description is interpreted; Code keeps whatever the service sent.
type ErrorDetail struct {
	Code        json.RawMessage `json:"code,omitempty"`
	Description string          `json:"description"`
}

// UnmarshalJSON accepts entries of any shape. A description that is not a
// string is kept as its JSON text; an entry that is not an object decodes to
// an empty detail.
func (d *ErrorDetail) UnmarshalJSON(data []byte) error {
	var raw struct {
		Code        json.RawMessage `json:"code"`
		Description json.RawMessage `json:"description"`
	}
	*d = ErrorDetail{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	d.Code = raw.Code
	if len(raw.Description) == 0 || string(raw.Description) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw.Description, &d.Description); err != nil {
		d.Description = string(raw.Description)
	}
	return nil
}

// FailurePayload describes a failed call. It is handed to FailFunc
// continuations unchanged and implements error.
type FailurePayload struct {
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	Status     string
	Header     http.Header

	// ResponseText is the raw response body.
	ResponseText string

	// Errors holds the entries of a {"errors":[{"description":...}]} body.
	Errors []ErrorDetail

	// Err is the cause of a failure that happened before or instead of an
	// HTTP response: validation, encoding, network or context errors.
	Err error

	// Message names the stage that failed when Err is set.
	Message string
}

func newFailurePayload(resp *http.Response, body []byte) *FailurePayload {
	p := &FailurePayload{
		StatusCode:   resp.StatusCode,
		Status:       resp.Status,
		Header:       resp.Header,
		ResponseText: string(body),
	}

	var errResp struct {
		Errors []ErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Errors) > 0 {
		p.Errors = errResp.Errors
	}
	return p
}

// Kind classifies the payload the same way the error report does.
func (p *FailurePayload) Kind() ErrorKind {
	switch {
	case p == nil:
		return UnknownError
	case len(p.Errors) > 0:
		return StructuredAPIError
	case p.ResponseText != "":
		return RawTextError
	default:
		return UnknownError
	}
}

// RequestID returns the X-Request-Id echoed by the server, if any.
func (p *FailurePayload) RequestID() string {
	if p == nil || p.Header == nil {
		return ""
	}
	return p.Header.Get(headerRequestID)
}

// Error implements the error interface.
func (p *FailurePayload) Error() string {
	if p == nil {
		return "iot: " + UnknownErrorMessage
	}
	if p.StatusCode != 0 {
		msg := ErrorMessages(p)[0]
		if id := p.RequestID(); id != "" {
			return fmt.Sprintf("iot: API error %d: %s (request_id: %s)", p.StatusCode, msg, id)
		}
		return fmt.Sprintf("iot: API error %d: %s", p.StatusCode, msg)
	}
	if p.Err != nil {
		if p.Message != "" {
			return p.Message + ": " + p.Err.Error()
		}
		return p.Err.Error()
	}
	return "iot: " + UnknownErrorMessage
}

// Unwrap returns the underlying cause.
func (p *FailurePayload) Unwrap() error {
	if p == nil {
		return nil
	}
	return p.Err
}

// Envelope converts the payload into a go-errors envelope carrying a
// category, an HTTP-like code and a text code.
func (p *FailurePayload) Envelope() *goerrors.Error {
	category, code, textCode := p.classify()

	var env *goerrors.Error
	if p != nil && p.Err != nil {
		msg := p.Message
		if msg == "" {
			msg = p.Err.Error()
		}
		env = goerrors.Wrap(p.Err, category, msg)
	} else {
		env = goerrors.New(p.Error(), category)
	}
	env = env.WithCode(code).WithTextCode(textCode)

	metadata := map[string]any{"kind": p.Kind().String()}
	if p != nil && p.StatusCode != 0 {
		metadata["status"] = p.StatusCode
	}
	if id := p.RequestID(); id != "" {
		metadata["request_id"] = id
	}
	return env.WithMetadata(metadata)
}

func (p *FailurePayload) classify() (goerrors.Category, int, string) {
	if p == nil {
		return goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal
	}
	if p.StatusCode == 0 {
		switch {
		case isValidation(p.Err):
			return goerrors.CategoryBadInput, http.StatusBadRequest, TextCodeBadInput
		case p.Err != nil:
			return goerrors.CategoryExternal, http.StatusBadGateway, TextCodeExternalFailure
		default:
			return goerrors.CategoryInternal, http.StatusInternalServerError, TextCodeInternal
		}
	}

	switch p.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return goerrors.CategoryBadInput, p.StatusCode, TextCodeBadInput
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth, p.StatusCode, TextCodeUnauthorized
	case http.StatusForbidden:
		return goerrors.CategoryAuthz, p.StatusCode, TextCodeForbidden
	case http.StatusNotFound:
		return goerrors.CategoryNotFound, p.StatusCode, TextCodeNotFound
	case http.StatusConflict:
		return goerrors.CategoryConflict, p.StatusCode, TextCodeConflict
	case http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit, p.StatusCode, TextCodeRateLimited
	}
	if p.StatusCode >= 500 {
		return goerrors.CategoryExternal, p.StatusCode, TextCodeExternalFailure
	}
	return goerrors.CategoryOperation, p.StatusCode, TextCodeExternalFailure
}

func isValidation(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func statusOf(err error) int {
	var p *FailurePayload
	if errors.As(err, &p) {
		return p.StatusCode
	}
	return 0
}

// IsUnauthorized returns true if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}

// IsForbidden returns true if the credentials lack the required scope.
func IsForbidden(err error) bool {
	return statusOf(err) == http.StatusForbidden
}

// IsNotFound returns true if the error indicates the resource was not found.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsConflict returns true if the resource already exists or is still referenced.
func IsConflict(err error) bool {
	return statusOf(err) == http.StatusConflict
}

// IsServerError returns true for 5xx responses.
func IsServerError(err error) bool {
	code := statusOf(err)
	return code >= 500 && code < 600
}

// IsValidation returns true if the call was rejected before any request was sent.
func IsValidation(err error) bool {
	return isValidation(err)
}

// IsTimeout returns true if the error indicates a timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
