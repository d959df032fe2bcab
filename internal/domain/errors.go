package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrInvalidArgument is returned when caller input is malformed or incomplete.
	// It is usually wrapped by a ValidationError carrying the offending field.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes a rejected input. Message is safe to show to
// callers; Details optionally maps field names to the reason they failed.
type ValidationError struct {
	Field   string
	Message string
	Details map[string]string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped sentinel so errors.Is(err, ErrInvalidArgument) holds.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping ErrInvalidArgument.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     ErrInvalidArgument,
	}
}

// NotFoundError reports a missing entity by kind and id.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewItemNotFoundError returns the error reported for an unknown item id.
func NewItemNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Entity: "Item", ID: id}
}

// NewTaskNotFoundError returns the error reported for an unknown task id.
func NewTaskNotFoundError(id string) *NotFoundError {
	return &NotFoundError{Entity: "Task", ID: id}
}
