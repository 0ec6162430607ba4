package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("lookup: %w", ErrNotFound), expected: true},
		{name: "ErrMasteryRecordNotFound", err: ErrMasteryRecordNotFound, expected: true},
		{name: "ErrStreakNotFound", err: ErrStreakNotFound, expected: true},
		{name: "ErrGoalNotFound", err: ErrGoalNotFound, expected: true},
		{name: "duplicate is not not-found", err: ErrSessionExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestNotFoundWrapsDomainNotFound(t *testing.T) {
	t.Parallel()
	assert.ErrorIs(t, ErrMasteryRecordNotFound, domain.ErrNotFound)
}

func TestIsConflictError(t *testing.T) {
	t.Parallel()

	exhausted := fmt.Errorf("%w: gave up: %w", ErrPersistenceFailure, ErrConcurrencyConflict)

	assert.True(t, IsConflictError(ErrConcurrencyConflict))
	assert.True(t, IsConflictError(fmt.Errorf("write: %w", ErrConcurrencyConflict)))
	assert.False(t, IsConflictError(exhausted), "exhausted retries are a persistence failure")
	assert.False(t, IsConflictError(ErrTransactionFailed))
}
