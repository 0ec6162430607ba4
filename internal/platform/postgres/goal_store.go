package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

var goalColumns = []string{
	"user_id", "goal_type", "target", "current", "window_start", "window_end", "created_at", "updated_at",
}

// PostgresGoalStore implements the store.GoalStore interface.
type PostgresGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGoalStore creates a new PostgreSQL implementation of the GoalStore interface.
func NewPostgresGoalStore(db store.DBTX, logger *slog.Logger) *PostgresGoalStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "goal_store")),
	}
}

var _ store.GoalStore = (*PostgresGoalStore)(nil)

// WithTx returns a copy of the store that runs its queries on tx.
func (s *PostgresGoalStore) WithTx(tx *sql.Tx) *PostgresGoalStore {
	return &PostgresGoalStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.GoalStore.Get
func (s *PostgresGoalStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
) (*domain.WeeklyGoal, error) {
	sqlQuery, args, err := qb.Select(goalColumns...).
		From("weekly_goals").
		Where(squirrel.Eq{"user_id": userID, "goal_type": string(goalType)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	goal, err := scanGoal(s.db.QueryRowContext(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGoalNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get weekly goal",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("goal_type", string(goalType)))
		return nil, MapError(err)
	}

	return goal, nil
}

// Upsert implements store.GoalStore.Upsert
func (s *PostgresGoalStore) Upsert(ctx context.Context, goal *domain.WeeklyGoal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	sqlQuery, args, err := qb.Insert("weekly_goals").
		Columns(goalColumns...).
		Values(
			goal.UserID,
			string(goal.Type),
			goal.Target,
			goal.Current,
			goal.WindowStart,
			goal.WindowEnd,
			goal.CreatedAt,
			goal.UpdatedAt,
		).
		Suffix(`ON CONFLICT (user_id, goal_type) DO UPDATE SET
			target = EXCLUDED.target,
			current = CASE WHEN weekly_goals.window_start = EXCLUDED.window_start
				THEN weekly_goals.current ELSE EXCLUDED.current END,
			window_start = EXCLUDED.window_start,
			window_end = EXCLUDED.window_end,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlQuery, args...); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to upsert weekly goal",
			slog.String("error", err.Error()),
			slog.String("user_id", goal.UserID.String()),
			slog.String("goal_type", string(goal.Type)))
		return MapError(err)
	}

	return nil
}

// ListByUser implements store.GoalStore.ListByUser
func (s *PostgresGoalStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WeeklyGoal, error) {
	sqlQuery, args, err := qb.Select(goalColumns...).
		From("weekly_goals").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("goal_type ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list weekly goals",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	goals := make([]*domain.WeeklyGoal, 0)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, MapError(err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return goals, nil
}

// AddProgress implements store.GoalStore.AddProgress
func (s *PostgresGoalStore) AddProgress(
	ctx context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
	amount int,
	now time.Time,
) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: progress amount must be positive", store.ErrInvalidEntity)
	}

	sqlQuery, args, err := qb.Update("weekly_goals").
		Set("current", squirrel.Expr("current + ?", amount)).
		Set("updated_at", now).
		Where(squirrel.Eq{"user_id": userID, "goal_type": string(goalType)}).
		Where(squirrel.LtOrEq{"window_start": now}).
		Where(squirrel.Gt{"window_end": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add goal progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("goal_type", string(goalType)))
		return false, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

func scanGoal(row rowScanner) (*domain.WeeklyGoal, error) {
	var goal domain.WeeklyGoal
	var goalType string
	if err := row.Scan(
		&goal.UserID,
		&goalType,
		&goal.Target,
		&goal.Current,
		&goal.WindowStart,
		&goal.WindowEnd,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	); err != nil {
		return nil, err
	}

	goal.Type = domain.GoalType(goalType)
	goal.WindowStart = goal.WindowStart.UTC()
	goal.WindowEnd = goal.WindowEnd.UTC()
	goal.CreatedAt = goal.CreatedAt.UTC()
	goal.UpdatedAt = goal.UpdatedAt.UTC()
	return &goal, nil
}
