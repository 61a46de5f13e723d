// Package api provides error types for file server responses.
package api

import (
	"errors"
	"fmt"

	"github.com/filebox/filebox-client/internal/validation"
)

// ErrInvalidFileName is returned before any request is sent when a name
// cannot be placed in a /delete/ or /download/ path.
var ErrInvalidFileName = validation.ErrInvalidFileName

// TransportError means the request could not be completed at all
// (connection refused, DNS failure, cancelled context, body read failure).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError means the request completed but the server answered with a
// status outside 2xx. Only operations whose contract checks the status
// return it (delete, download).
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsStatusError reports whether err wraps a *StatusError and returns its code.
func IsStatusError(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	code, ok := IsStatusError(err)
	return ok && code == 404
}
