package iot

import "encoding/json"

// Result is the outcome of one call: either a response body or a failure.
type Result struct {
	Body    json.RawMessage
	Failure *FailurePayload
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Call is a handle on an in-flight request.
// The continuations passed to the operation have already run when Done is closed.
type Call struct {
	done   chan struct{}
	result Result
}

func newCall() *Call {
	return &Call{done: make(chan struct{})}
}

// Done returns a channel that is closed once the call has completed and its
// continuations have returned.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call completes and returns its result.
func (c *Call) Wait() Result {
	<-c.done
	return c.result
}

// Result returns the outcome without blocking.
// The second value is false while the call is still in flight.
func (c *Call) Result() (Result, bool) {
	select {
	case <-c.done:
		return c.result, true
	default:
		return Result{}, false
	}
}
