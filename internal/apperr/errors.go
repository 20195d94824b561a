// Package apperr holds the error taxonomy shared by the payload, transport,
// upload and api packages.
//
// Local failures (bad input, missing files) are *Error values with a Kind and
// can be matched with errors.Is against the Err* sentinels. Failures reported by
// the server are *APIError and failures below HTTP are *TransportError; both are
// returned unchanged through the upload engine and the endpoint methods.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a local error.
type Kind string

const (
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
	KindNotFound        Kind = "NOT_FOUND"
)

// Error is a locally raised error. It is never the result of a network call.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	// ErrInvalidArgument matches every *Error of kind KindInvalidArgument.
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	// ErrNotFound matches every *Error of kind KindNotFound.
	ErrNotFound = &Error{Kind: KindNotFound}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Kind so that the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return false
	}
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || (e.Kind != "" && e.Kind == t.Kind)
}

// InvalidArgument builds an INVALID_ARGUMENT error.
func InvalidArgument(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NOT_FOUND error wrapping the underlying cause.
func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

// APIError is returned when the server answers with a non-2xx status.
type APIError struct {
	// Code is the HTTP status code (or the code reported in the error body).
	Code int
	// Message is the server-provided error message.
	Message string
	// Type is the server classification, e.g. "storage_file_not_found".
	Type string
	// Response is the raw response body.
	Response string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	if e.Type != "" {
		return fmt.Sprintf("API error (%d, %s): %s", e.Code, e.Type, msg)
	}
	return fmt.Sprintf("API error (%d): %s", e.Code, msg)
}

// TransportError wraps a network failure that happened below the HTTP layer.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsAPIError reports whether err carries an *APIError, optionally restricted to
// the given status codes.
func IsAPIError(err error, codes ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if apiErr.Code == c {
			return true
		}
	}
	return false
}
