package iot

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// WithLogger configures a structured logger for the client.
// When set, the client logs every exchange with the IoT services at debug
// level, client errors at warn level and server or network errors at error
// level.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	client, _ := iot.NewClient(iot.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// LoggingTransport is an http.RoundTripper that logs each exchange,
// including the X-Request-Id the client attached to it.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Logger == nil {
		return base.RoundTrip(req)
	}

	ctx := req.Context()
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("request_id", req.Header.Get(headerRequestID)),
	}
	t.Logger.LogAttrs(ctx, slog.LevelDebug, "http_request", attrs...)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	attrs = append(attrs, slog.Duration("duration", time.Since(start)))

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		t.Logger.LogAttrs(ctx, slog.LevelError, "http_error", attrs...)
		return nil, err
	}

	attrs = append(attrs, slog.Int("status", resp.StatusCode))
	t.Logger.LogAttrs(ctx, statusLevel(resp.StatusCode, nil), "http_response", attrs...)
	return resp, nil
}

// LogRequest logs a call about to be sent. The "service" attribute names
// the IoT service the URL belongs to.
func (c *Client) LogRequest(ctx context.Context, method, url string) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "api_request",
		slog.String("service", c.serviceOf(url)),
		slog.String("method", method),
		slog.String("url", url),
	)
}

// LogResponse logs the outcome of a call. statusCode is zero when no
// response was received.
func (c *Client) LogResponse(ctx context.Context, method, url string, statusCode int, duration time.Duration, err error) {
	if c.logger == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("service", c.serviceOf(url)),
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", statusCode),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(ctx, statusLevel(statusCode, err), "api_response", attrs...)
}

// serviceOf returns "dms", "mms", "oauth" or "other" for a target URL.
func (c *Client) serviceOf(url string) string {
	e := c.Endpoints()
	switch {
	case e.DMS != "" && strings.HasPrefix(url, e.DMS):
		return "dms"
	case e.MMS != "" && strings.HasPrefix(url, e.MMS):
		return "mms"
	case url == c.TokenURL():
		return "oauth"
	default:
		return "other"
	}
}

func statusLevel(statusCode int, err error) slog.Level {
	switch {
	case statusCode >= 500, statusCode == 0 && err != nil:
		return slog.LevelError
	case statusCode >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

// NewLoggingClient creates a client whose HTTP transport logs every
// exchange to logger, in addition to the client-level call logging.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	client, err := iot.NewLoggingClient(logger)
func NewLoggingClient(logger *slog.Logger, opts ...Option) (*Client, error) {
	httpClient := &http.Client{
		Timeout: DefaultTimeout,
		Transport: &LoggingTransport{
			Base: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
			Logger: logger,
		},
	}

	allOpts := append([]Option{WithHTTPClient(httpClient), WithLogger(logger)}, opts...)
	return NewClient(allOpts...)
}
