package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// PostgresStreakStore implements the store.StreakStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStreakStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStreakStore creates a new PostgreSQL implementation of the StreakStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresStreakStore(db store.DBTX, logger *slog.Logger) *PostgresStreakStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStreakStore{
		db:     db,
		logger: logger.With(slog.String("component", "streak_store")),
	}
}

var _ store.StreakStore = (*PostgresStreakStore)(nil)

// WithTx returns a copy of the store that runs its queries on tx.
func (s *PostgresStreakStore) WithTx(tx *sql.Tx) *PostgresStreakStore {
	return &PostgresStreakStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.StreakStore.Get
func (s *PostgresStreakStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	sqlQuery, args, err := qb.Select(
		"user_id", "current_streak", "longest_streak", "last_study_date", "version", "updated_at",
	).
		From("streaks").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var state domain.StreakState
	var lastStudy sql.NullTime
	err = s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(
		&state.UserID,
		&state.CurrentStreak,
		&state.LongestStreak,
		&lastStudy,
		&state.Version,
		&state.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStreakNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get streak",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	if lastStudy.Valid {
		day := domain.StudyDay(lastStudy.Time)
		state.LastStudyDate = &day
	}
	state.UpdatedAt = state.UpdatedAt.UTC()

	return &state, nil
}

// WriteIfUnchanged implements store.StreakStore.WriteIfUnchanged
func (s *PostgresStreakStore) WriteIfUnchanged(
	ctx context.Context,
	state *domain.StreakState,
	expectedVersion int64,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if expectedVersion < 0 {
		return 0, fmt.Errorf("%w: negative expected version", store.ErrInvalidEntity)
	}

	var lastStudy sql.NullTime
	if state.LastStudyDate != nil {
		lastStudy = sql.NullTime{Time: *state.LastStudyDate, Valid: true}
	}
	newVersion := expectedVersion + 1

	if expectedVersion == 0 {
		sqlQuery, args, err := qb.Insert("streaks").
			Columns("user_id", "current_streak", "longest_streak", "last_study_date", "version", "updated_at").
			Values(state.UserID, state.CurrentStreak, state.LongestStreak, lastStudy, newVersion, state.UpdatedAt).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build query: %w", err)
		}

		if _, err := s.db.ExecContext(ctx, sqlQuery, args...); err != nil {
			if IsUniqueViolation(err) {
				return 0, fmt.Errorf("%w: streak already exists", store.ErrConcurrencyConflict)
			}
			log.Error("failed to insert streak",
				slog.String("error", err.Error()),
				slog.String("user_id", state.UserID.String()))
			return 0, MapError(err)
		}
		return newVersion, nil
	}

	sqlQuery, args, err := qb.Update("streaks").
		Set("current_streak", state.CurrentStreak).
		Set("longest_streak", state.LongestStreak).
		Set("last_study_date", lastStudy).
		Set("version", newVersion).
		Set("updated_at", state.UpdatedAt).
		Where(squirrel.Eq{"user_id": state.UserID, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Error("failed to update streak",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return 0, MapError(err)
	}
	if err := checkVersionedWrite(result, "streak"); err != nil {
		return 0, err
	}

	return newVersion, nil
}
