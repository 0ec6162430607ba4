package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lexiloop/lexiloop-api/internal/store"
)

// Transactor implements store.Transactor on a PostgreSQL connection pool.
type Transactor struct {
	db       *sql.DB
	mastery  *PostgresMasteryStore
	streaks  *PostgresStreakStore
	sessions *PostgresSessionStore
	goals    *PostgresGoalStore
}

// NewTransactor creates a Transactor whose units of work share one transaction.
func NewTransactor(db *sql.DB, logger *slog.Logger) *Transactor {
	return &Transactor{
		db:       db,
		mastery:  NewPostgresMasteryStore(db, logger),
		streaks:  NewPostgresStreakStore(db, logger),
		sessions: NewPostgresSessionStore(db, logger),
		goals:    NewPostgresGoalStore(db, logger),
	}
}

var _ store.Transactor = (*Transactor)(nil)

// Stores returns the non-transactional stores backed by the pool.
func (t *Transactor) Stores() store.Stores {
	return store.Stores{
		Mastery:  t.mastery,
		Streaks:  t.streaks,
		Sessions: t.sessions,
		Goals:    t.goals,
	}
}

// WithinTransaction implements store.Transactor.WithinTransaction.
// A commit that fails on a serialization race is reported as a conflict so
// callers can retry.
func (t *Transactor) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, stores store.Stores) error,
) error {
	err := store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, store.Stores{
			Mastery:  t.mastery.WithTx(tx),
			Streaks:  t.streaks.WithTx(tx),
			Sessions: t.sessions.WithTx(tx),
			Goals:    t.goals.WithTx(tx),
		})
	})

	if err != nil && IsSerializationFailure(err) && !errors.Is(err, store.ErrConcurrencyConflict) {
		return fmt.Errorf("%w: %v", store.ErrConcurrencyConflict, err)
	}
	return err
}
