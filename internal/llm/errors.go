package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind tags a model failure with the category callers classify on.
type ErrorKind string

// Error kinds produced by provider adapters.
const (
	KindRateLimited   ErrorKind = "rate_limited"
	KindTimeout       ErrorKind = "timeout"
	KindSchemaInvalid ErrorKind = "schema_invalid"
	KindProvider      ErrorKind = "provider_error"
)

// ModelError is the single error type returned by provider adapters.
// For KindSchemaInvalid, Payload holds whatever object the provider extracted
// and Usage holds the token figures reported alongside the failure.
type ModelError struct {
	Kind       ErrorKind
	Provider   Provider
	StatusCode int
	Message    string
	Payload    json.RawMessage
	Usage      Usage
	Cause      error
}

func (e *ModelError) Error() string {
	msg := string(e.Kind)
	if e.Provider != "" {
		msg = fmt.Sprintf("%s %s", e.Provider, e.Kind)
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// KindOf returns the error kind carried by err. Context deadlines count as timeouts;
// any other untagged error is a provider error.
func KindOf(err error) ErrorKind {
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return modelErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindProvider
}

// kindForStatus maps an HTTP status returned by a provider to an error kind.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindProvider
	}
}

// transportError wraps a failure that happened before any provider response was read.
func transportError(p Provider, err error) *ModelError {
	kind := KindProvider
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &ModelError{
		Kind:     kind,
		Provider: p,
		Message:  "request failed",
		Cause:    err,
	}
}
