package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryOnConflict(t *testing.T) {
	t.Parallel()

	otherErr := errors.New("boom")

	tests := []struct {
		name         string
		results      []error
		maxAttempts  int
		wantCalls    int
		wantErr      error
		wantExhausts bool
	}{
		{name: "first attempt succeeds", results: []error{nil}, maxAttempts: 3, wantCalls: 1},
		{
			name:        "succeeds after one conflict",
			results:     []error{ErrConcurrencyConflict, nil},
			maxAttempts: 3,
			wantCalls:   2,
		},
		{
			name:        "other errors are not retried",
			results:     []error{otherErr},
			maxAttempts: 3,
			wantCalls:   1,
			wantErr:     otherErr,
		},
		{
			name:         "conflict on every attempt",
			results:      []error{ErrConcurrencyConflict, ErrConcurrencyConflict, ErrConcurrencyConflict},
			maxAttempts:  3,
			wantCalls:    3,
			wantExhausts: true,
		},
		{
			name:         "non-positive attempts run once",
			results:      []error{ErrConcurrencyConflict},
			maxAttempts:  0,
			wantCalls:    1,
			wantExhausts: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := RetryOnConflict(context.Background(), tt.maxAttempts, func(ctx context.Context, attempt int) error {
				calls++
				assert.Equal(t, calls, attempt)
				return tt.results[calls-1]
			})

			assert.Equal(t, tt.wantCalls, calls)
			switch {
			case tt.wantExhausts:
				assert.ErrorIs(t, err, ErrPersistenceFailure)
				assert.ErrorIs(t, err, ErrConcurrencyConflict)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryOnConflict_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RetryOnConflict(ctx, 3, func(ctx context.Context, attempt int) error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
