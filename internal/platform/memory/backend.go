// Package memory provides an in-process implementation of the store
// interfaces. It backs the "memory" database driver for local development
// and the service tests.
//
// Transactions run on a private snapshot and record every write. On commit
// the writes are replayed against the live data under a lock, re-checking
// expected versions, so two transactions that read the same record version
// cannot both commit.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// Backend holds the live data set.
type Backend struct {
	mu     sync.Mutex
	live   *state
	logger *slog.Logger
}

// New creates an empty Backend. If logger is nil, a default logger will be used.
func New(logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		live:   newState(),
		logger: logger.With(slog.String("component", "memory_store")),
	}
}

var (
	_ store.Transactor      = (*Backend)(nil)
	_ store.VocabularyStore = (*Backend)(nil)
)

// Seed implements store.VocabularyStore.Seed
func (b *Backend) Seed(ctx context.Context, entries []domain.Vocabulary) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	inserted := b.live.seed(entries)
	logger.FromContextOrDefault(ctx, b.logger).Info("vocabulary seeded",
		slog.Int("entries", len(entries)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

// Stores returns stores that operate directly on the live data, one
// operation at a time.
func (b *Backend) Stores() store.Stores {
	l := &lockedStores{b: b}
	return store.Stores{
		Mastery:  l,
		Streaks:  (*lockedStreaks)(l),
		Sessions: (*lockedSessions)(l),
		Goals:    (*lockedGoals)(l),
	}
}

// WithinTransaction implements store.Transactor.WithinTransaction.
func (b *Backend) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, stores store.Stores) error,
) error {
	b.mu.Lock()
	tx := &txStores{snapshot: b.live.clone()}
	b.mu.Unlock()

	if err := fn(ctx, tx.stores()); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.live.clone()
	for _, op := range tx.journal {
		if err := op(next); err != nil {
			logger.FromContextOrDefault(ctx, b.logger).Debug("transaction rejected at commit",
				slog.String("error", err.Error()))
			return err
		}
	}
	b.live = next
	return nil
}
