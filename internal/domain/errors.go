package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTopic is returned when a topic key is empty or blank.
	ErrInvalidTopic = errors.New("topic cannot be empty")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when a request lacks a valid identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrSessionNotActive is returned when a session-scoped counter is
	// updated on a session that has already been closed.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrSessionAlreadyClosed is returned when a session is closed twice.
	ErrSessionAlreadyClosed = errors.New("session is already closed")
)

// ValidationError describes a validation failure on a specific field.
// It wraps a sentinel error so callers can still use errors.Is.
type ValidationError struct {
	Field   string // The field that failed validation
	Message string // Human-readable description of the failure
	Err     error  // Wrapped sentinel error (usually ErrValidation)
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
