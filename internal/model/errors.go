package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Local storage errors
	ErrNotFound = errors.New("key not found")

	// Submission errors
	ErrActionInFlight = errors.New("action is already in progress")

	// Session errors
	ErrNotAuthenticated = errors.New("admin session is not authenticated")
)

// ValidationError is a local input problem detected before any request is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given form field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
