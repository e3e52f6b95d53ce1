package iot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.uber.org/zap"
)

// Notifier displays a single error message to whoever is operating the
// host application. The client uses it for calls issued without a FailFunc.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, message string)

// Notify calls f(ctx, message).
func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}

// NopNotifier discards every message.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, string) {}

// WriterNotifier writes one line per message, e.g. to a terminal.
type WriterNotifier struct {
	w  io.Writer
	mu sync.Mutex
}

// NewWriterNotifier returns a Notifier that prints "Error: <message>" lines to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify implements Notifier.
func (n *WriterNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "Error: %s\n", message)
}

// SlogNotifier logs each message at error level.
type SlogNotifier struct {
	Logger *slog.Logger
}

// Notify implements Notifier.
func (n SlogNotifier) Notify(ctx context.Context, message string) {
	if n.Logger == nil {
		return
	}
	n.Logger.LogAttrs(ctx, slog.LevelError, "api_failure", slog.String("message", message))
}

// ZapNotifier logs each message at error level through zap.
type ZapNotifier struct {
	Logger *zap.Logger
}

// Notify implements Notifier.
func (n ZapNotifier) Notify(_ context.Context, message string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Error("api_failure", zap.String("message", message))
}

// ErrorMessages returns the messages a failure is displayed as, in order:
// one per described error for structured responses, the raw response text
// otherwise, and UnknownErrorMessage when neither is present.
// The result is never empty.
func ErrorMessages(p *FailurePayload) []string {
	switch p.Kind() {
	case StructuredAPIError:
		msgs := make([]string, 0, len(p.Errors))
		for _, e := range p.Errors {
			if e.Description == "" {
				msgs = append(msgs, UnknownErrorMessage)
				continue
			}
			msgs = append(msgs, e.Description)
		}
		return msgs
	case RawTextError:
		return []string{p.ResponseText}
	default:
		return []string{UnknownErrorMessage}
	}
}

// Report displays every message of p through the client's notifier.
func (c *Client) Report(ctx context.Context, p *FailurePayload) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.logger != nil && p != nil {
		attrs := []slog.Attr{
			slog.String("kind", p.Kind().String()),
			slog.Int("status", p.StatusCode),
		}
		if p.Err != nil {
			attrs = append(attrs, slog.String("error", p.Err.Error()))
		}
		c.logger.LogAttrs(ctx, slog.LevelDebug, "api_failure_report", attrs...)
	}
	for _, msg := range ErrorMessages(p) {
		c.notifier.Notify(ctx, msg)
	}
}
