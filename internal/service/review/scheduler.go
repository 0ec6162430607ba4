// Package review builds a user's review queue from their mastery records and
// the vocabulary catalog.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// Default queue sizes used when Config leaves them unset.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Catalog is the part of the vocabulary catalog the scheduler reads.
type Catalog interface {
	Lookup(word string) (domain.Vocabulary, error)
	Filter(maxDifficulty int, searchTerm string) []domain.Vocabulary
}

// Scheduler produces the ordered review queue for a user.
type Scheduler interface {
	// GetDueQueue returns at most limit items for the user to review now.
	//
	// Records due at or before now come first, ordered by due time, then
	// lowest confidence, then word. When fewer than limit records are due,
	// the queue is filled with catalog words the user has never studied, in
	// catalog difficulty order, flagged IsNew.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - userID: UUID of the user
	//   - limit: Maximum number of items; values above the configured
	//     maximum are clamped
	//
	// Returns:
	//   - ([]domain.DueItem, nil): The queue, possibly empty
	//   - (nil, service.ErrInvalidLimit): If limit is zero or negative
	//   - (nil, error): Any store error
	GetDueQueue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error)

	// DefaultLimit returns the queue size used when the caller has no preference.
	DefaultLimit() int
}

// Config holds the queue size bounds.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// Verify interface compliance at compile time
var _ Scheduler = (*schedulerImpl)(nil)

type schedulerImpl struct {
	records store.MasteryStore
	catalog Catalog
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

// NewScheduler creates a Scheduler. A nil clock means time.Now.
func NewScheduler(
	records store.MasteryStore,
	catalog Catalog,
	cfg Config,
	clock func() time.Time,
	logger *slog.Logger,
) Scheduler {
	if records == nil {
		panic("records cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = MaxLimit
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > cfg.MaxLimit {
		cfg.DefaultLimit = min(DefaultLimit, cfg.MaxLimit)
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &schedulerImpl{
		records: records,
		catalog: catalog,
		cfg:     cfg,
		now:     clock,
		logger:  logger.With(slog.String("component", "review_scheduler")),
	}
}

// DefaultLimit implements Scheduler.DefaultLimit
func (s *schedulerImpl) DefaultLimit() int {
	return s.cfg.DefaultLimit
}

// GetDueQueue implements Scheduler.GetDueQueue
func (s *schedulerImpl) GetDueQueue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", service.ErrInvalidLimit, limit)
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	now := s.now().UTC()
	due, err := s.records.ListDue(ctx, userID, now, limit)
	if err != nil {
		log.Error("failed to list due records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.NewServiceError("get_due_queue", "failed to list due records", err)
	}
	sort.SliceStable(due, func(i, j int) bool { return domain.LessDue(due[i], due[j]) })

	queue := make([]domain.DueItem, 0, limit)
	for _, record := range due {
		if len(queue) == limit {
			break
		}
		entry, err := s.catalog.Lookup(record.Word)
		if err != nil {
			// the word was removed from the seed set after the user studied it
			log.Warn("due record references a word missing from the catalog",
				slog.String("user_id", userID.String()),
				slog.String("word", record.Word))
			continue
		}
		queue = append(queue, domain.DueItem{Vocabulary: entry, Record: record})
	}

	if len(queue) < limit {
		queue, err = s.backfill(ctx, userID, queue, limit)
		if err != nil {
			log.Error("failed to backfill review queue",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, service.NewServiceError("get_due_queue", "failed to list studied words", err)
		}
	}

	log.Debug("review queue built",
		slog.String("user_id", userID.String()),
		slog.Int("due", len(due)),
		slog.Int("size", len(queue)))
	return queue, nil
}

// backfill appends never-studied catalog words until the queue holds limit
// items.
func (s *schedulerImpl) backfill(
	ctx context.Context,
	userID uuid.UUID,
	queue []domain.DueItem,
	limit int,
) ([]domain.DueItem, error) {
	words, err := s.records.ListWords(ctx, userID)
	if err != nil {
		return nil, err
	}
	studied := make(map[string]struct{}, len(words))
	for _, w := range words {
		studied[strings.ToLower(w)] = struct{}{}
	}

	for _, entry := range s.catalog.Filter(0, "") {
		if len(queue) == limit {
			break
		}
		if _, ok := studied[strings.ToLower(entry.Word)]; ok {
			continue
		}
		queue = append(queue, domain.DueItem{Vocabulary: entry, IsNew: true})
	}
	return queue, nil
}
