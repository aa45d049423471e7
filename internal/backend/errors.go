package backend

import (
	"errors"
	"fmt"
)

// StatusError indicates that the service answered with a status other than
// 200 OK. The response body is not inspected.
type StatusError struct {
	Path       string
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %s", e.Path, e.Status)
}

// TransportError indicates that no usable response was obtained: the request
// could not be built or sent, the body could not be read, or a 200 body was
// not valid JSON.
type TransportError struct {
	Op  string // encode, request, send, read, decode
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsStatusError reports whether err is, or wraps, a *StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
