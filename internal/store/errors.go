package store

import (
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrNilBackend is returned when a store is created without a backend.
	ErrNilBackend = errors.New("store backend cannot be nil")

	// ErrCorruptDocument is returned when the persisted document cannot be decoded.
	ErrCorruptDocument = errors.New("persisted document is corrupt")

	// ErrClosed is returned by backends that have been closed.
	ErrClosed = errors.New("store is closed")
)

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "document", "item")
	Operation string // The operation that failed (e.g., "read", "write")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// IsStoreError reports whether err originated from a backend failure.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
