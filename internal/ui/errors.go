package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/apperr"
)

// ErrorType defines the category of error for proper handling
type ErrorType int

const (
	ErrorTypeUserCancelled ErrorType = iota // Ctrl+C, 'q' - silent exit
	ErrorTypeValidation                     // bad input, show error, no usage
	ErrorTypeAPI                            // server or network failure
	ErrorTypeFileSystem                     // local file problems
	ErrorTypeConfiguration                  // missing project, bad credentials
	ErrorTypeInternal                       // anything else
)

// UIError carries an error from a Bubbletea model back to Cobra together with
// how it should be presented.
type UIError struct {
	Err           error
	Type          ErrorType
	SuppressUsage bool // Don't show Cobra usage message
	SilentExit    bool // Already rendered by the view, or should stay silent
}

func (e *UIError) Error() string {
	return e.Err.Error()
}

func (e *UIError) Unwrap() error {
	return e.Err
}

func NewUserCancelledError() *UIError {
	return &UIError{
		Err:           fmt.Errorf("cancelled by user"),
		Type:          ErrorTypeUserCancelled,
		SuppressUsage: true,
		SilentExit:    true,
	}
}

func NewValidationError(err error) *UIError {
	return &UIError{Err: err, Type: ErrorTypeValidation, SuppressUsage: true}
}

func NewAPIError(err error) *UIError {
	return &UIError{Err: err, Type: ErrorTypeAPI, SuppressUsage: true}
}

func NewFileSystemError(err error) *UIError {
	return &UIError{Err: err, Type: ErrorTypeFileSystem, SuppressUsage: true}
}

func NewConfigurationError(err error) *UIError {
	return &UIError{Err: err, Type: ErrorTypeConfiguration, SuppressUsage: true}
}

func NewInternalError(err error) *UIError {
	return &UIError{Err: err, Type: ErrorTypeInternal, SuppressUsage: true}
}

// Classify wraps a library error in the UIError matching its kind. Errors
// that already are UIErrors pass through unchanged.
func Classify(err error) *UIError {
	var uiErr *UIError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &uiErr):
		return uiErr
	case errors.Is(err, context.Canceled):
		return NewUserCancelledError()
	case errors.Is(err, apperr.ErrInvalidArgument):
		return NewValidationError(err)
	case errors.Is(err, apperr.ErrNotFound):
		return NewFileSystemError(err)
	}

	var apiErr *apperr.APIError
	var transportErr *apperr.TransportError
	switch {
	case errors.As(err, &apiErr), errors.As(err, &transportErr):
		return NewAPIError(err)
	default:
		return NewInternalError(err)
	}
}
