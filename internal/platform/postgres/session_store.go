package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface.
// Outcomes are kept in a JSONB column in submission order.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
	}
}

var _ store.SessionStore = (*PostgresSessionStore)(nil)

// WithTx returns a copy of the store that runs its queries on tx.
func (s *PostgresSessionStore) WithTx(tx *sql.Tx) *PostgresSessionStore {
	return &PostgresSessionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.SessionStore.Append
func (s *PostgresSessionStore) Append(ctx context.Context, session *domain.StudySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	outcomes := session.Outcomes
	if outcomes == nil {
		outcomes = []domain.Outcome{}
	}
	outcomesJSON, err := json.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("failed to encode outcomes: %w", err)
	}

	sqlQuery, args, err := qb.Insert("study_sessions").
		Columns("id", "user_id", "session_type", "duration_seconds", "outcomes", "completed_at").
		Values(
			session.ID,
			session.UserID,
			string(session.Type),
			session.DurationSeconds,
			outcomesJSON,
			session.CompletedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, sqlQuery, args...); err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrSessionExists, session.ID)
		}
		log.Error("failed to append study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}

	log.Debug("study session appended",
		slog.String("session_id", session.ID.String()),
		slog.String("type", string(session.Type)),
		slog.Int("outcomes", len(session.Outcomes)))
	return nil
}

// ListRecent implements store.SessionStore.ListRecent
func (s *PostgresSessionStore) ListRecent(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
) ([]*domain.StudySession, error) {
	query := qb.Select("id", "user_id", "session_type", "duration_seconds", "outcomes", "completed_at").
		From("study_sessions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("completed_at DESC", "id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list study sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	sessions := make([]*domain.StudySession, 0)
	for rows.Next() {
		var session domain.StudySession
		var sessionType string
		var outcomesJSON []byte
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&sessionType,
			&session.DurationSeconds,
			&outcomesJSON,
			&session.CompletedAt,
		); err != nil {
			return nil, MapError(err)
		}
		if err := json.Unmarshal(outcomesJSON, &session.Outcomes); err != nil {
			return nil, fmt.Errorf("failed to decode outcomes of session %s: %w", session.ID, err)
		}
		session.Type = domain.SessionType(sessionType)
		session.CompletedAt = session.CompletedAt.UTC()
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return sessions, nil
}

// Summarize implements store.SessionStore.Summarize
func (s *PostgresSessionStore) Summarize(ctx context.Context, userID uuid.UUID) (*domain.SessionLogSummary, error) {
	sqlQuery, args, err := qb.Select(
		"session_type",
		"COUNT(*)",
		"COALESCE(SUM(duration_seconds), 0)",
		"MAX(completed_at)",
	).
		From("study_sessions").
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("session_type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to summarize study sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	summary := &domain.SessionLogSummary{SessionsByType: make(map[domain.SessionType]int)}
	for rows.Next() {
		var sessionType string
		var count int
		var seconds int64
		var last sql.NullTime
		if err := rows.Scan(&sessionType, &count, &seconds, &last); err != nil {
			return nil, MapError(err)
		}

		summary.SessionsByType[domain.SessionType(sessionType)] = count
		summary.SessionCount += count
		summary.TotalStudySeconds += seconds
		if last.Valid {
			at := last.Time.UTC()
			if summary.LastSessionAt == nil || at.After(*summary.LastSessionAt) {
				summary.LastSessionAt = &at
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return summary, nil
}
