package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
)

// DefaultMaxAttempts is the number of read-modify-write attempts made before
// a persistent conflict is reported as ErrPersistenceFailure.
const DefaultMaxAttempts = 3

// RetryOnConflict calls fn until it returns something other than a
// concurrency conflict, up to maxAttempts times. fn must redo its reads on
// every attempt. When every attempt conflicts, the returned error wraps both
// ErrPersistenceFailure and the last conflict.
func RetryOnConflict(ctx context.Context, maxAttempts int, fn func(ctx context.Context, attempt int) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx, attempt)
		if lastErr == nil || !IsConflictError(lastErr) {
			return lastErr
		}

		log.Debug("concurrent modification, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.String("error", lastErr.Error()))
	}

	log.Warn("giving up after repeated concurrent modifications",
		slog.Int("attempts", maxAttempts))
	return fmt.Errorf("%w: gave up after %d attempts: %w", ErrPersistenceFailure, maxAttempts, lastErr)
}
