package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can decide how to surface them.
type Kind string

const (
	// KindValidation marks user-correctable input problems.
	KindValidation Kind = "VALIDATION"

	// KindNotFound marks a lookup that produced no match.
	KindNotFound Kind = "NOT_FOUND"

	// KindTransport marks network, status or decode failures talking to an external provider.
	KindTransport Kind = "TRANSPORT"

	// KindStore marks persistence failures.
	KindStore Kind = "STORE"
)

// AppError is the error type shared by every layer of the application.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

// NewTransportError creates an external provider error.
func NewTransportError(message string, err error) *AppError {
	return &AppError{Kind: KindTransport, Message: message, Err: err}
}

// NewStoreError creates a persistence error.
func NewStoreError(message string, err error) *AppError {
	return &AppError{Kind: KindStore, Message: message, Err: err}
}

// IsKind reports whether any error in err's chain is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Message returns the human-readable part of err, without the kind prefix.
// Causes are appended so transport failures stay diagnosable for the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return err.Error()
	}
	if appErr.Err != nil {
		return appErr.Message + ": " + appErr.Err.Error()
	}
	return appErr.Message
}
