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

	// ErrNotFound is returned when a referenced vocabulary word or user
	// resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference is returned when a session outcome or mastery
	// update points at a word that is not in the vocabulary catalog.
	ErrInvalidReference = errors.New("invalid vocabulary reference")

	// ErrEmptySession is returned when a test session carries no outcomes.
	ErrEmptySession = errors.New("test session has no outcomes")

	// ErrInvalidID is returned when an ID is malformed or empty.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes a single invalid field of a domain entity.
// It unwraps to ErrValidation so callers can match on the category.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	return fmt.Sprintf("%v: %s %s", e.Err, e.Field, e.Message)
}

// Unwrap returns the wrapped category error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field. A nil err defaults
// to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
