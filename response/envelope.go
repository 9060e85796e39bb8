// Package response decodes service responses into typed models wrapped in a
// tri-state Envelope: success with a value, empty, or failure.
package response

import (
	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
)

// Envelope wraps the outcome of one query. A value and an error are never
// both present; an envelope holding neither is empty.
type Envelope[T any] struct {
	value T
	ok    bool
	err   error
}

// Success wraps a decoded value.
func Success[T any](value T) Envelope[T] {
	return Envelope[T]{value: value, ok: true}
}

// Empty is a successful response with nothing in it.
func Empty[T any]() Envelope[T] {
	return Envelope[T]{}
}

// Failure wraps err. A nil err yields an empty envelope.
func Failure[T any](err error) Envelope[T] {
	return Envelope[T]{err: err}
}

// Value returns the decoded value and whether one is present.
func (e Envelope[T]) Value() (T, bool) {
	return e.value, e.ok
}

// Err returns the failure, or nil.
func (e Envelope[T]) Err() error {
	return e.err
}

// IsSuccess reports whether the envelope holds a value.
func (e Envelope[T]) IsSuccess() bool {
	return e.ok
}

// IsEmpty reports whether the envelope holds neither a value nor an error.
func (e Envelope[T]) IsEmpty() bool {
	return !e.ok && e.err == nil
}

// IsError reports whether the envelope holds an error.
func (e Envelope[T]) IsError() bool {
	return e.err != nil
}

// NetworkError reports whether the failure was a transport failure such as a
// timeout or a refused connection, rather than an error answered by the service.
func (e Envelope[T]) NetworkError() bool {
	return cioerrors.IsNetworkError(e.err)
}
