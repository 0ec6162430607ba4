package goals_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/platform/memory"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/lexiloop/lexiloop-api/internal/service/goals"
	"github.com/lexiloop/lexiloop-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday 2026-10-16; the Monday week is [2026-10-12, 2026-10-19).
var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTracker(weekStart time.Weekday) (goals.Tracker, *memory.Backend, *fakeClock) {
	backend := memory.New(nil)
	clock := &fakeClock{now: testNow}
	return goals.NewTracker(backend.Stores().Goals, backend, weekStart, clock.Now, nil), backend, clock
}

func TestSetWeeklyGoal(t *testing.T) {
	t.Parallel()

	tracker, _, _ := newTracker(time.Monday)
	userID := uuid.New()

	status, err := tracker.SetWeeklyGoal(context.Background(), userID, domain.GoalTypeWords, 50)
	require.NoError(t, err)

	assert.Equal(t, userID, status.UserID)
	assert.Equal(t, 50, status.Target)
	assert.Zero(t, status.Current)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), status.WindowStart)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), status.WindowEnd)
	assert.True(t, status.Active)
	assert.False(t, status.Completed)
}

func TestSetWeeklyGoal_WeekStart(t *testing.T) {
	t.Parallel()

	tracker, _, _ := newTracker(time.Sunday)
	status, err := tracker.SetWeeklyGoal(context.Background(), uuid.New(), domain.GoalTypeTime, 60)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), status.WindowStart)
}

func TestSetWeeklyGoal_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		goalType domain.GoalType
		target   int
	}{
		{"unknown type", "pages", 10},
		{"zero target", domain.GoalTypeWords, 0},
		{"negative target", domain.GoalTypeTests, -3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tracker, _, _ := newTracker(time.Monday)
			_, err := tracker.SetWeeklyGoal(context.Background(), uuid.New(), tc.goalType, tc.target)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestProgressWithinAndAcrossWeeks(t *testing.T) {
	t.Parallel()

	tracker, _, clock := newTracker(time.Monday)
	ctx := context.Background()
	userID := uuid.New()

	_, err := tracker.SetWeeklyGoal(ctx, userID, domain.GoalTypeWords, 10)
	require.NoError(t, err)

	updated, err := tracker.RecordProgress(ctx, userID, domain.GoalTypeWords, 4)
	require.NoError(t, err)
	assert.True(t, updated)

	status, err := tracker.SetWeeklyGoal(ctx, userID, domain.GoalTypeWords, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Current, "same week keeps progress")
	assert.Equal(t, 6, status.Target)

	_, err = tracker.RecordProgress(ctx, userID, domain.GoalTypeWords, 3)
	require.NoError(t, err)

	list, err := tracker.GetGoals(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].Current)
	assert.True(t, list[0].Completed)

	// next week: the old goal is expired and ignores progress
	clock.now = testNow.AddDate(0, 0, 7)

	updated, err = tracker.RecordProgress(ctx, userID, domain.GoalTypeWords, 5)
	require.NoError(t, err)
	assert.False(t, updated)

	list, err = tracker.GetGoals(ctx, userID)
	require.NoError(t, err)
	assert.False(t, list[0].Active)
	assert.Equal(t, 7, list[0].Current)

	status, err = tracker.SetWeeklyGoal(ctx, userID, domain.GoalTypeWords, 10)
	require.NoError(t, err)
	assert.Zero(t, status.Current, "a new week starts from zero")
	assert.True(t, status.Active)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), status.WindowStart)
}

// racingTransactor lets a session commit progress while a goal change is
// still open.
type racingTransactor struct {
	store.Transactor
	race func(ctx context.Context) error
}

func (r racingTransactor) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, stores store.Stores) error,
) error {
	return r.Transactor.WithinTransaction(ctx, func(ctx context.Context, stores store.Stores) error {
		if err := fn(ctx, stores); err != nil {
			return err
		}
		return r.race(ctx)
	})
}

func TestSetWeeklyGoal_KeepsConcurrentProgress(t *testing.T) {
	t.Parallel()

	backend := memory.New(nil)
	goalStore := backend.Stores().Goals
	clock := func() time.Time { return testNow }
	plain := goals.NewTracker(goalStore, backend, time.Monday, clock, nil)
	ctx := context.Background()
	userID := uuid.New()

	_, err := plain.SetWeeklyGoal(ctx, userID, domain.GoalTypeTime, 30)
	require.NoError(t, err)
	_, err = plain.RecordProgress(ctx, userID, domain.GoalTypeTime, 5)
	require.NoError(t, err)

	racing := goals.NewTracker(goalStore, racingTransactor{
		Transactor: backend,
		race: func(ctx context.Context) error {
			_, err := goalStore.AddProgress(ctx, userID, domain.GoalTypeTime, 7, testNow)
			return err
		},
	}, time.Monday, clock, nil)

	status, err := racing.SetWeeklyGoal(ctx, userID, domain.GoalTypeTime, 60)
	require.NoError(t, err)
	assert.Equal(t, 60, status.Target)
	assert.Equal(t, 12, status.Current)

	stored, err := goalStore.Get(ctx, userID, domain.GoalTypeTime)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Current)
}

func TestRecordProgress_NoGoal(t *testing.T) {
	t.Parallel()

	tracker, backend, _ := newTracker(time.Monday)
	userID := uuid.New()

	updated, err := tracker.RecordProgress(context.Background(), userID, domain.GoalTypeStories, 1)
	require.NoError(t, err)
	assert.False(t, updated)

	_, err = backend.Stores().Goals.Get(context.Background(), userID, domain.GoalTypeStories)
	assert.ErrorIs(t, err, store.ErrGoalNotFound, "progress never creates a goal")
}

func TestRecordProgress_Invalid(t *testing.T) {
	t.Parallel()

	tracker, _, _ := newTracker(time.Monday)

	_, err := tracker.RecordProgress(context.Background(), uuid.New(), domain.GoalTypeTime, 0)
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	_, err = tracker.RecordProgress(context.Background(), uuid.New(), "pages", 1)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetGoals_SortedByType(t *testing.T) {
	t.Parallel()

	tracker, _, _ := newTracker(time.Monday)
	ctx := context.Background()
	userID := uuid.New()

	for _, goalType := range []domain.GoalType{
		domain.GoalTypeWords, domain.GoalTypeStories, domain.GoalTypeTime, domain.GoalTypeTests,
	} {
		_, err := tracker.SetWeeklyGoal(ctx, userID, goalType, 5)
		require.NoError(t, err)
	}
	_, err := tracker.SetWeeklyGoal(ctx, uuid.New(), domain.GoalTypeWords, 5)
	require.NoError(t, err)

	list, err := tracker.GetGoals(ctx, userID)
	require.NoError(t, err)

	types := make([]domain.GoalType, len(list))
	for i, g := range list {
		types[i] = g.Type
	}
	assert.Equal(t, []domain.GoalType{"stories", "tests", "time", "words"}, types)

	empty, err := tracker.GetGoals(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

type failingGoals struct {
	store.GoalStore
	err error
}

func (f failingGoals) ListByUser(context.Context, uuid.UUID) ([]*domain.WeeklyGoal, error) {
	return nil, f.err
}

func TestGetGoals_StoreError(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	backend := memory.New(nil)
	tracker := goals.NewTracker(failingGoals{err: dbErr}, backend, time.Monday, nil, nil)

	_, err := tracker.GetGoals(context.Background(), uuid.New())
	assert.ErrorIs(t, err, dbErr)

	var serviceErr *service.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "get_goals", serviceErr.Operation)
}
