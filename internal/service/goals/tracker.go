// Package goals tracks weekly study goals. Goals exist only once a user sets
// them; progress outside a goal's week is ignored.
package goals

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// Status is a goal together with its state at the time it was read.
type Status struct {
	domain.WeeklyGoal
	Active    bool `json:"active"`
	Completed bool `json:"completed"`
}

// Tracker manages a user's weekly goals.
type Tracker interface {
	// SetWeeklyGoal sets the target for goalType in the current week.
	// Updating a goal within the same week keeps its progress; a goal left
	// over from an earlier week starts again from zero.
	SetWeeklyGoal(ctx context.Context, userID uuid.UUID, goalType domain.GoalType, target int) (*Status, error)

	// RecordProgress adds amount to the goal of goalType if it is active now.
	// It reports whether a goal was updated; a missing or expired goal is
	// not an error. amount must be positive.
	RecordProgress(ctx context.Context, userID uuid.UUID, goalType domain.GoalType, amount int) (bool, error)

	// GetGoals returns every goal of the user sorted by type name.
	GetGoals(ctx context.Context, userID uuid.UUID) ([]Status, error)
}

// Verify interface compliance at compile time
var _ Tracker = (*trackerImpl)(nil)

type trackerImpl struct {
	goals     store.GoalStore
	tx        store.Transactor
	weekStart time.Weekday
	now       func() time.Time
	logger    *slog.Logger
}

// NewTracker creates a Tracker whose weeks begin at 00:00 UTC on weekStart.
// A nil clock means time.Now.
func NewTracker(
	goals store.GoalStore,
	tx store.Transactor,
	weekStart time.Weekday,
	clock func() time.Time,
	logger *slog.Logger,
) Tracker {
	if goals == nil {
		panic("goals cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &trackerImpl{
		goals:     goals,
		tx:        tx,
		weekStart: weekStart,
		now:       clock,
		logger:    logger.With(slog.String("component", "goal_tracker")),
	}
}

// SetWeeklyGoal implements Tracker.SetWeeklyGoal
func (t *trackerImpl) SetWeeklyGoal(
	ctx context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
	target int,
) (*Status, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)
	now := t.now().UTC()
	start, end := domain.WeekWindow(now, t.weekStart)

	goal := &domain.WeeklyGoal{
		UserID:      userID,
		Type:        goalType,
		Target:      target,
		WindowStart: start,
		WindowEnd:   end,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	// The store keeps progress already made in the same window, so a
	// concurrent session is never overwritten by a target change.
	err := t.tx.WithinTransaction(ctx, func(ctx context.Context, stores store.Stores) error {
		return stores.Goals.Upsert(ctx, goal)
	})
	if err != nil {
		log.Error("failed to set weekly goal",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("goal_type", string(goalType)))
		return nil, service.NewServiceError("set_weekly_goal", "failed to store goal", err)
	}

	stored, err := t.goals.Get(ctx, userID, goalType)
	if err != nil {
		return nil, service.NewServiceError("set_weekly_goal", "failed to read goal", err)
	}
	goal = stored

	log.Info("weekly goal set",
		slog.String("user_id", userID.String()),
		slog.String("goal_type", string(goalType)),
		slog.Int("target", target),
		slog.Int("current", goal.Current))
	return newStatus(goal, now), nil
}

// RecordProgress implements Tracker.RecordProgress
func (t *trackerImpl) RecordProgress(
	ctx context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
	amount int,
) (bool, error) {
	if !goalType.Valid() {
		return false, domain.NewValidationError("type", "must be one of words, time, stories, tests", nil)
	}
	if amount <= 0 {
		return false, fmt.Errorf("%w: got %d", service.ErrInvalidAmount, amount)
	}

	updated, err := t.goals.AddProgress(ctx, userID, goalType, amount, t.now().UTC())
	if err != nil {
		logger.FromContextOrDefault(ctx, t.logger).Error("failed to record goal progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("goal_type", string(goalType)))
		return false, service.NewServiceError("record_progress", "failed to update goal", err)
	}
	return updated, nil
}

// GetGoals implements Tracker.GetGoals
func (t *trackerImpl) GetGoals(ctx context.Context, userID uuid.UUID) ([]Status, error) {
	goals, err := t.goals.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, t.logger).Error("failed to list weekly goals",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.NewServiceError("get_goals", "failed to list goals", err)
	}

	sort.Slice(goals, func(i, j int) bool { return goals[i].Type < goals[j].Type })

	now := t.now().UTC()
	statuses := make([]Status, 0, len(goals))
	for _, goal := range goals {
		statuses = append(statuses, *newStatus(goal, now))
	}
	return statuses, nil
}

func newStatus(goal *domain.WeeklyGoal, now time.Time) *Status {
	return &Status{
		WeeklyGoal: *goal,
		Active:     goal.Active(now),
		Completed:  goal.Completed(),
	}
}
