// Package errors defines the SDK error taxonomy: build, transport, HTTP and decode failures.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies an SDK error.
type Kind string

const (
	// KindBuild is malformed input caught while assembling a request. Never retried.
	KindBuild Kind = "build"
	// KindTransport is a connection failure, reset or timeout.
	KindTransport Kind = "transport"
	// KindHTTP is a non-2xx response from the service.
	KindHTTP Kind = "http"
	// KindUnauthorized is a 401/403 response, usually a bad API key.
	KindUnauthorized Kind = "unauthorized"
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode Kind = "decode"
)

// Error is the structured error returned by every SDK operation.
type Error struct {
	Kind       Kind
	StatusCode int
	Status     string
	Body       string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Status)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewBuild creates a build error.
func NewBuild(msg string, err error) *Error {
	return &Error{Kind: KindBuild, Message: msg, Err: err}
}

// Buildf creates a build error from a format string.
func Buildf(format string, args ...any) *Error {
	return &Error{Kind: KindBuild, Message: fmt.Sprintf(format, args...)}
}

// NewTransport wraps a failure to reach the service.
func NewTransport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// NewDecode wraps a response body that could not be decoded.
func NewDecode(err error) *Error {
	return &Error{Kind: KindDecode, Message: "decode response", Err: err}
}

// KindOf returns the kind of err, or "" when err is not an SDK error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an SDK error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsNetworkError reports whether err means the service could not be reached,
// as opposed to the service answering with an error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindTransport:
		return true
	case KindBuild, KindHTTP, KindUnauthorized, KindDecode:
		return false
	}
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return stderrors.As(err, &urlErr)
}

// StatusCode extracts the HTTP status code from err.
func StatusCode(err error) (int, bool) {
	var e *Error
	if stderrors.As(err, &e) && e.StatusCode != 0 {
		return e.StatusCode, true
	}
	return 0, false
}

// FromRoundTrip classifies an error returned by http.Client.Do. SDK errors
// raised inside the transport chain pass through; anything else becomes a
// transport error. The request URL is dropped from the message because it
// may carry query values that were never redacted.
func FromRoundTrip(method, path string, err error) error {
	if err == nil {
		return nil
	}
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var sdkErr *Error
	if stderrors.As(err, &sdkErr) {
		return sdkErr
	}
	return &Error{Kind: KindTransport, Message: method + " " + path, Err: err}
}
