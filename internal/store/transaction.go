package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
)

// TxFn is the body of a SQL unit of work.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction runs fn in a transaction with the driver's default
// isolation level. See RunInTransactionWithOptions.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	return RunInTransactionWithOptions(ctx, db, nil, fn)
}

// RunInTransactionWithOptions runs fn in a transaction started with opts.
//
// The transaction commits when fn returns nil. An error from fn rolls back
// and is returned as is, so conflicts keep their identity for retry loops.
// Begin and commit failures wrap ErrTransactionFailed. A panic in fn rolls
// back and propagates.
func RunInTransactionWithOptions(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn TxFn) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback after panic failed",
					slog.String("error", rbErr.Error()), slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic", slog.Any("panic", p))
			}
		}
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		return rollback(log, tx, err)
	}

	committed = true
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", slog.String("error", err.Error()))
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrTransactionFailed, err)
	}
	return nil
}

// rollback aborts tx after cause and reports cause, annotated with the
// rollback failure when there is one.
func rollback(log *slog.Logger, tx *sql.Tx, cause error) error {
	if err := tx.Rollback(); err != nil {
		log.Error("failed to roll back transaction",
			slog.String("rollback_error", err.Error()),
			slog.String("cause", cause.Error()))
		return fmt.Errorf("error rolling back transaction: %v (cause: %w)", err, cause)
	}
	log.Debug("rolled back transaction", slog.String("cause", cause.Error()))
	return cause
}
