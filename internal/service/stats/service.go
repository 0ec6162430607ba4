// Package stats aggregates a user's progress from mastery records, the
// streak state and the session log.
package stats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Service computes progress statistics.
type Service interface {
	// GetStats returns the user's progress at the current time. A user
	// without any activity gets zeroed statistics, not an error.
	GetStats(ctx context.Context, userID uuid.UUID) (*domain.ProgressStats, error)
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	mastery  store.MasteryStore
	streaks  store.StreakStore
	sessions store.SessionStore
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a stats Service reading from stores. A nil clock means
// time.Now.
func NewService(stores store.Stores, clock func() time.Time, logger *slog.Logger) Service {
	if stores.Mastery == nil {
		panic("mastery store cannot be nil")
	}
	if stores.Streaks == nil {
		panic("streak store cannot be nil")
	}
	if stores.Sessions == nil {
		panic("session store cannot be nil")
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		mastery:  stores.Mastery,
		streaks:  stores.Streaks,
		sessions: stores.Sessions,
		now:      clock,
		logger:   logger.With(slog.String("component", "stats_service")),
	}
}

// GetStats implements Service.GetStats
func (s *serviceImpl) GetStats(ctx context.Context, userID uuid.UUID) (*domain.ProgressStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	var (
		masterySummary *domain.MasterySummary
		streak         *domain.StreakState
		sessionSummary *domain.SessionLogSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		masterySummary, err = s.mastery.Summarize(gctx, userID, now)
		return err
	})
	g.Go(func() error {
		var err error
		streak, err = s.streaks.Get(gctx, userID)
		if errors.Is(err, store.ErrStreakNotFound) {
			streak, err = domain.NewStreakState(userID), nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		sessionSummary, err = s.sessions.Summarize(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("failed to gather progress stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.NewServiceError("get_stats", "failed to gather statistics", err)
	}

	return &domain.ProgressStats{
		UserID:      userID,
		Mastery:     *masterySummary,
		Accuracy:    masterySummary.Accuracy(),
		Streak:      *streak,
		Sessions:    *sessionSummary,
		GeneratedAt: now,
	}, nil
}
