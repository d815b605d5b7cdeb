package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations. The four root
// kinds (not found, conflict, invalid, storage) are the contract: any
// Repository error unwraps to exactly one of them, so callers can map
// failures to stable outward signals with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic root of the entity-specific not found
	// errors (ErrDeckNotFound, ErrCardNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when an operation would violate a uniqueness
	// constraint, such as a duplicate deck name.
	ErrConflict = errors.New("entity already exists")

	// ErrInvalid is returned when malformed input reaches the store layer,
	// for example an unparseable persisted grade or timestamp.
	ErrInvalid = errors.New("invalid entity")

	// ErrStorage is returned for I/O, serialization, or connectivity
	// failures underneath the Repository contract.
	ErrStorage = errors.New("storage failure")

	// Entity-specific "not found" errors

	// ErrDeckNotFound indicates that the requested deck does not exist.
	ErrDeckNotFound = fmt.Errorf("%w: deck", ErrNotFound)

	// ErrCardNotFound indicates that the requested card does not exist.
	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)

	// Entity-specific "conflict" errors

	// ErrDeckNameExists indicates that a deck with the given name already
	// exists. Deck names are compared case-insensitively.
	ErrDeckNameExists = fmt.Errorf("%w: deck name", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is any kind of uniqueness conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidError checks if the error reports malformed input or data.
func IsInvalidError(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsStorageError checks if the error reports an underlying storage failure.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// StoreError carries context about which operation on which entity failed.
// It wraps one of the root error kinds so errors.Is classification keeps
// working through it.
type StoreError struct {
	Entity    string // The entity type (e.g., "deck", "card")
	Operation string // The operation that failed (e.g., "create", "delete")
	Err       error  // Underlying error, wrapping a root kind
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, e.Entity, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// and wrapped error.
func NewStoreError(entity, operation string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Err:       err,
	}
}
