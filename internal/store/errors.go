package store

import (
	"errors"
	"fmt"

	"github.com/lexiloop/lexiloop-api/internal/domain"
)

// Errors shared by every store implementation. Backends wrap them so callers
// can match with errors.Is regardless of the storage engine.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = fmt.Errorf("%w: entity", domain.ErrNotFound)

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a session log entry with an existing ID).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references data that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConcurrencyConflict is returned by optimistic writes when the stored
	// version no longer matches the expected one. Callers retry the whole
	// read-modify-write cycle with fresh reads.
	ErrConcurrencyConflict = errors.New("concurrent modification detected")

	// ErrPersistenceFailure is returned when the underlying store is
	// unavailable or a conflict persisted through every retry.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrTransactionFailed is returned when a transaction cannot be started
	// or committed.
	ErrTransactionFailed = fmt.Errorf("%w: transaction failed", ErrPersistenceFailure)

	// ErrMasteryRecordNotFound indicates the user has no record for the word.
	ErrMasteryRecordNotFound = fmt.Errorf("%w: mastery record", ErrNotFound)

	// ErrStreakNotFound indicates the user has no streak state yet.
	ErrStreakNotFound = fmt.Errorf("%w: streak", ErrNotFound)

	// ErrGoalNotFound indicates the user has no goal of the requested type.
	ErrGoalNotFound = fmt.Errorf("%w: weekly goal", ErrNotFound)

	// ErrSessionExists indicates a study session with the same ID was already logged.
	ErrSessionExists = fmt.Errorf("%w: study session", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error is an optimistic concurrency conflict
// that has not yet been converted into a persistence failure.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) && !errors.Is(err, ErrPersistenceFailure)
}
