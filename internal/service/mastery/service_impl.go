package mastery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// Option configures the mastery service.
type Option func(*serviceImpl)

// WithClock replaces time.Now as the source of review timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMaxAttempts sets how many times a conflicting write is retried.
func WithMaxAttempts(n int) Option {
	return func(s *serviceImpl) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

type serviceImpl struct {
	records     store.MasteryStore
	tx          store.Transactor
	catalog     Catalog
	policy      OutcomePolicy
	now         func() time.Time
	maxAttempts int
	logger      *slog.Logger
}

// NewService creates a new mastery Service. records serves plain reads and
// tx runs every write.
func NewService(
	records store.MasteryStore,
	tx store.Transactor,
	catalog Catalog,
	policy OutcomePolicy,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if records == nil {
		panic("records cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if policy == nil {
		panic("policy cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		records:     records,
		tx:          tx,
		catalog:     catalog,
		policy:      policy,
		now:         time.Now,
		maxAttempts: store.DefaultMaxAttempts,
		logger:      logger.With(slog.String("component", "mastery_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Service.Get
func (s *serviceImpl) Get(ctx context.Context, userID uuid.UUID, word string) (*domain.MasteryRecord, error) {
	entry, err := s.catalog.Lookup(word)
	if err != nil {
		return nil, err
	}

	record, err := s.records.Get(ctx, userID, entry.Word)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get mastery record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word", entry.Word))
		return nil, service.NewServiceError("get_mastery", "failed to read record", err)
	}
	return record, nil
}

// Upsert implements Service.Upsert
func (s *serviceImpl) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	word string,
	fn Mutator,
) (*domain.MasteryRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	entry, err := s.catalog.Lookup(word)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("mastery update for unknown word",
				slog.String("user_id", userID.String()),
				slog.String("word", word))
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReference, word)
		}
		return nil, err
	}

	var updated *domain.MasteryRecord
	err = store.RetryOnConflict(ctx, s.maxAttempts, func(ctx context.Context, attempt int) error {
		return s.tx.WithinTransaction(ctx, func(ctx context.Context, stores store.Stores) error {
			record, err := Apply(ctx, stores.Mastery, userID, entry.Word, s.now(), fn)
			if err != nil {
				return err
			}
			updated = record
			return nil
		})
	})
	if err != nil {
		log.Error("failed to update mastery record",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("word", entry.Word))
		return nil, service.NewServiceError("upsert_mastery", "failed to update record", err)
	}

	log.Debug("mastery record updated",
		slog.String("user_id", userID.String()),
		slog.String("word", updated.Word),
		slog.Int("mastery_level", updated.MasteryLevel),
		slog.Int64("version", updated.Version))
	return updated, nil
}

// RecordOutcome implements Service.RecordOutcome
func (s *serviceImpl) RecordOutcome(
	ctx context.Context,
	userID uuid.UUID,
	word string,
	correct bool,
) (*domain.MasteryRecord, error) {
	return s.Upsert(ctx, userID, word, OutcomeMutator(s.policy, correct, s.now()))
}
