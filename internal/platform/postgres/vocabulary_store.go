package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// seedBatchSize bounds the rows per INSERT so large catalogs stay under the
// PostgreSQL parameter limit.
const seedBatchSize = 500

// PostgresVocabularyStore implements the store.VocabularyStore interface.
type PostgresVocabularyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresVocabularyStore creates a new PostgreSQL implementation of the VocabularyStore interface.
func NewPostgresVocabularyStore(db store.DBTX, logger *slog.Logger) *PostgresVocabularyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresVocabularyStore{
		db:     db,
		logger: logger.With(slog.String("component", "vocabulary_store")),
	}
}

var _ store.VocabularyStore = (*PostgresVocabularyStore)(nil)

// Seed implements store.VocabularyStore.Seed
// Existing words are left untouched.
func (s *PostgresVocabularyStore) Seed(ctx context.Context, entries []domain.Vocabulary) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	inserted := 0
	for start := 0; start < len(entries); start += seedBatchSize {
		end := min(start+seedBatchSize, len(entries))

		query := qb.Insert("vocabulary").
			Columns("word", "definition", "pronunciation", "part_of_speech", "difficulty", "examples", "synonyms").
			Suffix("ON CONFLICT DO NOTHING")

		for _, entry := range entries[start:end] {
			examples, err := encodeList(entry.Examples)
			if err != nil {
				return inserted, err
			}
			synonyms, err := encodeList(entry.Synonyms)
			if err != nil {
				return inserted, err
			}
			query = query.Values(
				entry.Word,
				entry.Definition,
				entry.Pronunciation,
				entry.PartOfSpeech,
				entry.Difficulty,
				examples,
				synonyms,
			)
		}

		sqlQuery, args, err := query.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("build query: %w", err)
		}

		result, err := s.db.ExecContext(ctx, sqlQuery, args...)
		if err != nil {
			log.Error("failed to seed vocabulary",
				slog.String("error", err.Error()),
				slog.Int("batch_start", start))
			return inserted, MapError(err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(affected)
	}

	log.Info("vocabulary seeded",
		slog.Int("entries", len(entries)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

func encodeList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}
	return data, nil
}
