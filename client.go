package iot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultDMSURL is the device management service of the trial environment.
	DefaultDMSURL = "https://iotrdmsx36737db5-s0016403060trial.hanatrial.ondemand.com/com.sap.iotservices.dms/api/"

	// DefaultMMSURL is the message management service of the trial environment.
	DefaultMMSURL = "https://iotmmss0016403060trial.hanatrial.ondemand.com/com.sap.iotservices.mms/v1/api/http/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "iot-go/1.0"

	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
	headerRequestID = "X-Request-Id"
)

// DoneFunc is the completion continuation of a facade call.
// It receives the raw response body on success. After a failed call it is
// invoked once more with a nil body, so completion logic runs regardless of
// the outcome.
type DoneFunc func(body json.RawMessage)

// FailFunc receives the failure payload of a call. When supplied it replaces
// the client's default error reporting for that call.
type FailFunc func(payload *FailurePayload)

// Client is an IoT services API client.
// It is safe for concurrent use.
type Client struct {
	endpoints  atomic.Pointer[ServiceEndpoints]
	httpClient *http.Client
	logger     *slog.Logger
	notifier   Notifier
	tokenURL   string
	userAgent  string

	token   string
	tokenMu sync.RWMutex

	registerer prometheus.Registerer
	tracing    bool
	initErr    error
}

// Option configures a Client.
type Option func(*Client)

// WithServiceURLs sets the device management and message management base URLs.
func WithServiceURLs(dmsURL, mmsURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(dmsURL) == "" || strings.TrimSpace(mmsURL) == "" {
			c.initErr = ErrEmptyServiceURL
			return
		}
		c.SetServiceURL(dmsURL, mmsURL)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP request timeout.
// This option can be applied in any order relative to other options.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

// WithNotifier sets the capability used to display failures of calls that
// were issued without a FailFunc.
func WithNotifier(n Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithToken attaches "Authorization: Bearer <token>" to every facade call.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTokenURL overrides the OAuth token endpoint.
// By default the endpoint is /oauth/token on the host of the MMS base URL.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		c.tokenURL = tokenURL
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMetrics registers request counters and latency histograms with reg
// and instruments the client's HTTP transport.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithTracing wraps the client's HTTP transport with OpenTelemetry spans.
// Spans are exported through the globally registered tracer provider.
func WithTracing() Option {
	return func(c *Client) {
		c.tracing = true
	}
}

// NewClient creates a new IoT services API client.
// Returns ErrEmptyServiceURL if WithServiceURLs was given an empty URL.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DisableKeepAlives:   false,
			},
		},
		notifier:  NewWriterNotifier(os.Stderr),
		userAgent: DefaultUserAgent,
	}
	c.SetServiceURL(DefaultDMSURL, DefaultMMSURL)

	for _, opt := range opts {
		opt(c)
	}
	if c.initErr != nil {
		return nil, c.initErr
	}

	if c.registerer != nil || c.tracing {
		hc := *c.httpClient
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		if c.registerer != nil {
			m, err := newClientMetrics(c.registerer)
			if err != nil {
				return nil, err
			}
			base = m.instrument(base)
		}
		if c.tracing {
			base = otelhttp.NewTransport(base)
		}
		hc.Transport = base
		c.httpClient = &hc
	}

	return c, nil
}

// SetToken updates the bearer token attached to facade calls.
// Pass an empty string to stop sending an Authorization header.
func (c *Client) SetToken(token string) {
	c.tokenMu.Lock()
	c.token = token
	c.tokenMu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.token
}

// Invoke issues one HTTP request and returns immediately.
//
// body, when non-nil, is sent as JSON. opts are applied after the defaults
// and may override anything, including the method and URL. Exactly one
// outcome is delivered: done(body) on success, or on failure fail(payload)
// (or the client's error report when fail is nil) followed by done(nil).
func (c *Client) Invoke(ctx context.Context, method, rawURL string, body any, done DoneFunc, fail FailFunc, opts ...RequestOption) *Call {
	req := c.newRequest(method, rawURL, body)
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}
	return c.start(ctx, func(ctx context.Context) Result {
		return c.do(ctx, req)
	}, func(ctx context.Context, r Result) {
		c.complete(ctx, r, done, fail)
	})
}

// reject delivers err through the failure path without touching the network.
func (c *Client) reject(ctx context.Context, err error, done DoneFunc, fail FailFunc) *Call {
	return c.start(ctx, func(context.Context) Result {
		return Result{Failure: &FailurePayload{Err: err}}
	}, func(ctx context.Context, r Result) {
		c.complete(ctx, r, done, fail)
	})
}

// complete translates a Result into the done and fail continuations.
func (c *Client) complete(ctx context.Context, r Result, done DoneFunc, fail FailFunc) {
	if r.Failure == nil {
		if done != nil {
			done(r.Body)
		}
		return
	}

	if fail != nil {
		fail(r.Failure)
	} else {
		c.Report(ctx, r.Failure)
	}
	if done != nil {
		done(nil)
	}
}

func (c *Client) start(ctx context.Context, run func(context.Context) Result, deliver func(context.Context, Result)) *Call {
	if ctx == nil {
		ctx = context.Background()
	}
	call := newCall()
	go func() {
		defer close(call.done)
		r := run(ctx)
		call.result = r
		deliver(ctx, r)
	}()
	return call
}

func (c *Client) newRequest(method, rawURL string, body any) *Request {
	req := &Request{
		Method:      method,
		URL:         rawURL,
		ContentType: contentTypeJSON,
		Header:      http.Header{},
		Body:        body,
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerRequestID, uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// do performs the HTTP exchange described by r.
func (c *Client) do(ctx context.Context, r *Request) Result {
	var reqBody io.Reader
	if r.Body != nil && !bodyless(r.Method) {
		data, err := encodeBody(r.Body)
		if err != nil {
			return failed(err, "iot: failed to marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	target, err := r.target()
	if err != nil {
		return failed(err, "iot: invalid request URL")
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, reqBody)
	if err != nil {
		return failed(err, "iot: failed to create request")
	}
	req.Header = r.Header.Clone()
	if req.Header == nil {
		req.Header = http.Header{}
	}
	if r.ContentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", r.ContentType)
	}

	start := time.Now()
	c.LogRequest(ctx, r.Method, target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.LogResponse(ctx, r.Method, target, 0, time.Since(start), err)
		return failed(err, "iot: request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.LogResponse(ctx, r.Method, target, resp.StatusCode, time.Since(start), err)
		return failed(err, "iot: failed to read response body")
	}

	if !isSuccessStatus(resp.StatusCode) {
		payload := newFailurePayload(resp, respBody)
		c.LogResponse(ctx, r.Method, target, resp.StatusCode, time.Since(start), payload)
		return Result{Failure: payload}
	}

	c.LogResponse(ctx, r.Method, target, resp.StatusCode, time.Since(start), nil)
	if respBody == nil {
		respBody = []byte{}
	}
	return Result{Body: respBody}
}

func failed(err error, message string) Result {
	return Result{Failure: &FailurePayload{Err: err, Message: message}}
}

func isSuccessStatus(code int) bool {
	return (code >= 200 && code < 300) || code == http.StatusNotModified
}

// encodeBody serializes a request body. Raw byte slices are sent verbatim.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case url.Values:
		return []byte(b.Encode()), nil
	}
	return json.Marshal(body)
}

// bodyless reports whether requests with method never carry a body.
func bodyless(method string) bool {
	return method == http.MethodGet || method == http.MethodDelete
}
