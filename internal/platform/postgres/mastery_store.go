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

var masteryColumns = []string{
	"user_id",
	"word",
	"mastery_level",
	"correct_count",
	"incorrect_count",
	"total_attempts",
	"confidence_score",
	"first_learned_at",
	"last_reviewed_at",
	"next_due_at",
	"version",
	"created_at",
	"updated_at",
}

// PostgresMasteryStore implements the store.MasteryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMasteryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresMasteryStore creates a new PostgreSQL implementation of the MasteryStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresMasteryStore(db store.DBTX, logger *slog.Logger) *PostgresMasteryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMasteryStore{
		db:     db,
		logger: logger.With(slog.String("component", "mastery_store")),
	}
}

// Ensure PostgresMasteryStore implements store.MasteryStore interface
var _ store.MasteryStore = (*PostgresMasteryStore)(nil)

// WithTx returns a copy of the store that runs its queries on tx.
func (s *PostgresMasteryStore) WithTx(tx *sql.Tx) *PostgresMasteryStore {
	return &PostgresMasteryStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.MasteryStore.Get
func (s *PostgresMasteryStore) Get(ctx context.Context, userID uuid.UUID, word string) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sqlQuery, args, err := qb.Select(masteryColumns...).
		From("mastery_records").
		Where(squirrel.Eq{"user_id": userID, "word": word}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	record, err := scanMasteryRecord(s.db.QueryRowContext(ctx, sqlQuery, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMasteryRecordNotFound
		}
		log.Error("failed to get mastery record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word", word))
		return nil, MapError(err)
	}

	return record, nil
}

// WriteIfUnchanged implements store.MasteryStore.WriteIfUnchanged
func (s *PostgresMasteryStore) WriteIfUnchanged(
	ctx context.Context,
	record *domain.MasteryRecord,
	expectedVersion int64,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("mastery record validation failed",
			slog.String("error", err.Error()),
			slog.String("word", record.Word))
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if expectedVersion < 0 {
		return 0, fmt.Errorf("%w: negative expected version", store.ErrInvalidEntity)
	}

	newVersion := expectedVersion + 1

	if expectedVersion == 0 {
		sqlQuery, args, err := qb.Insert("mastery_records").
			Columns(masteryColumns...).
			Values(
				record.UserID,
				record.Word,
				record.MasteryLevel,
				record.CorrectCount,
				record.IncorrectCount,
				record.TotalAttempts,
				record.ConfidenceScore,
				nullTime(record.FirstLearnedAt),
				nullTime(record.LastReviewedAt),
				record.NextDueAt,
				newVersion,
				record.CreatedAt,
				record.UpdatedAt,
			).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build query: %w", err)
		}

		if _, err := s.db.ExecContext(ctx, sqlQuery, args...); err != nil {
			if IsUniqueViolation(err) {
				log.Debug("mastery record created concurrently",
					slog.String("user_id", record.UserID.String()),
					slog.String("word", record.Word))
				return 0, fmt.Errorf("%w: mastery record already exists", store.ErrConcurrencyConflict)
			}
			if IsForeignKeyViolation(err) {
				return 0, fmt.Errorf("%w: word %q is not in the vocabulary", store.ErrInvalidEntity, record.Word)
			}
			log.Error("failed to insert mastery record",
				slog.String("error", err.Error()),
				slog.String("word", record.Word))
			return 0, MapError(err)
		}
		return newVersion, nil
	}

	sqlQuery, args, err := qb.Update("mastery_records").
		Set("mastery_level", record.MasteryLevel).
		Set("correct_count", record.CorrectCount).
		Set("incorrect_count", record.IncorrectCount).
		Set("total_attempts", record.TotalAttempts).
		Set("confidence_score", record.ConfidenceScore).
		Set("first_learned_at", nullTime(record.FirstLearnedAt)).
		Set("last_reviewed_at", nullTime(record.LastReviewedAt)).
		Set("next_due_at", record.NextDueAt).
		Set("version", newVersion).
		Set("updated_at", record.UpdatedAt).
		Where(squirrel.Eq{"user_id": record.UserID, "word": record.Word, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Error("failed to update mastery record",
			slog.String("error", err.Error()),
			slog.String("word", record.Word))
		return 0, MapError(err)
	}
	if err := checkVersionedWrite(result, "mastery record"); err != nil {
		log.Debug("mastery record version changed",
			slog.String("word", record.Word),
			slog.Int64("expected_version", expectedVersion))
		return 0, err
	}

	return newVersion, nil
}

// ListDue implements store.MasteryStore.ListDue
func (s *PostgresMasteryStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := qb.Select(masteryColumns...).
		From("mastery_records").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"next_due_at": now}).
		OrderBy("next_due_at ASC", "confidence_score ASC", "word ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		log.Error("failed to list due mastery records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*domain.MasteryRecord, 0)
	for rows.Next() {
		record, err := scanMasteryRecord(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// ListWords implements store.MasteryStore.ListWords
func (s *PostgresMasteryStore) ListWords(ctx context.Context, userID uuid.UUID) ([]string, error) {
	sqlQuery, args, err := qb.Select("word").
		From("mastery_records").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("word ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list studied words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	words := make([]string, 0)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, MapError(err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return words, nil
}

// Summarize implements store.MasteryStore.Summarize
func (s *PostgresMasteryStore) Summarize(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.MasterySummary, error) {
	sqlQuery, args, err := qb.Select(
		"mastery_level",
		"COUNT(*)",
		"COALESCE(SUM(correct_count), 0)",
		"COALESCE(SUM(incorrect_count), 0)",
		"COALESCE(SUM(confidence_score), 0)",
	).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE next_due_at <= ?)", now)).
		From("mastery_records").
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("mastery_level").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to summarize mastery records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	summary := &domain.MasterySummary{LevelCounts: make([]int, domain.MaxMasteryLevel+1)}
	var confidenceSum float64
	for rows.Next() {
		var level, count, correct, incorrect, due int
		var confidence float64
		if err := rows.Scan(&level, &count, &correct, &incorrect, &confidence, &due); err != nil {
			return nil, MapError(err)
		}
		if level < 0 || level > domain.MaxMasteryLevel {
			return nil, fmt.Errorf("%w: mastery level %d out of range", store.ErrInvalidEntity, level)
		}

		summary.LevelCounts[level] += count
		summary.WordsSeen += count
		summary.CorrectCount += correct
		summary.IncorrectCount += incorrect
		summary.DueNow += due
		confidenceSum += confidence
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	summary.TotalAttempts = summary.CorrectCount + summary.IncorrectCount
	summary.MasteredWords = summary.LevelCounts[domain.MaxMasteryLevel]
	if summary.WordsSeen > 0 {
		summary.AverageConfidence = confidenceSum / float64(summary.WordsSeen)
	}

	return summary, nil
}

func scanMasteryRecord(row rowScanner) (*domain.MasteryRecord, error) {
	var record domain.MasteryRecord
	var firstLearned, lastReviewed sql.NullTime

	err := row.Scan(
		&record.UserID,
		&record.Word,
		&record.MasteryLevel,
		&record.CorrectCount,
		&record.IncorrectCount,
		&record.TotalAttempts,
		&record.ConfidenceScore,
		&firstLearned,
		&lastReviewed,
		&record.NextDueAt,
		&record.Version,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.FirstLearnedAt = timeOrZero(firstLearned)
	record.LastReviewedAt = timeOrZero(lastReviewed)
	record.NextDueAt = record.NextDueAt.UTC()
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()

	return &record, nil
}
