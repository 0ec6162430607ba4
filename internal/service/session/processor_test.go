package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/catalog"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/domain/srs"
	"github.com/lexiloop/lexiloop-api/internal/platform/memory"
	"github.com/lexiloop/lexiloop-api/internal/service/session"
	"github.com/lexiloop/lexiloop-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday; the goal week runs from Monday 2026-10-12 to Monday 2026-10-19.
var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

var testEntries = []domain.Vocabulary{
	{Word: "lucid", Definition: "clear", Difficulty: 2},
	{Word: "Serendipity", Definition: "a happy accident", Difficulty: 3},
	{Word: "brisk", Definition: "quick and energetic", Difficulty: 1},
}

type fixture struct {
	backend *memory.Backend
	catalog *catalog.Catalog
	stores  store.Stores
	userID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.New(testEntries)
	require.NoError(t, err)

	backend := memory.New(nil)
	_, err = backend.Seed(context.Background(), testEntries)
	require.NoError(t, err)

	return &fixture{
		backend: backend,
		catalog: cat,
		stores:  backend.Stores(),
		userID:  uuid.New(),
	}
}

func (f *fixture) processor(tx store.Transactor, opts ...session.Option) session.Processor {
	if tx == nil {
		tx = f.backend
	}
	opts = append([]session.Option{session.WithClock(func() time.Time { return testNow })}, opts...)
	return session.NewProcessor(tx, f.catalog, srs.NewDefaultService(), nil, opts...)
}

func (f *fixture) putStreak(t *testing.T, current, longest int, last time.Time) {
	t.Helper()

	day := domain.StudyDay(last)
	state := &domain.StreakState{
		UserID:        f.userID,
		CurrentStreak: current,
		LongestStreak: longest,
		LastStudyDate: &day,
	}
	_, err := f.stores.Streaks.WriteIfUnchanged(context.Background(), state, 0)
	require.NoError(t, err)
}

func (f *fixture) putLevel(t *testing.T, word string, level int) {
	t.Helper()

	reviewed := testNow.AddDate(0, 0, -10)
	record := &domain.MasteryRecord{
		UserID:          f.userID,
		Word:            word,
		MasteryLevel:    level,
		CorrectCount:    level,
		TotalAttempts:   level,
		ConfidenceScore: 0.5,
		FirstLearnedAt:  reviewed,
		LastReviewedAt:  reviewed,
		NextDueAt:       reviewed,
		CreatedAt:       reviewed,
		UpdatedAt:       reviewed,
	}
	_, err := f.stores.Mastery.WriteIfUnchanged(context.Background(), record, 0)
	require.NoError(t, err)
}

func (f *fixture) putGoal(t *testing.T, goalType domain.GoalType, start time.Time) {
	t.Helper()

	goal := &domain.WeeklyGoal{
		UserID:      f.userID,
		Type:        goalType,
		Target:      10,
		WindowStart: start,
		WindowEnd:   start.AddDate(0, 0, 7),
		CreatedAt:   start,
		UpdatedAt:   start,
	}
	require.NoError(t, f.stores.Goals.Upsert(context.Background(), goal))
}

func reviewSession(outcomes ...domain.Outcome) domain.StudySession {
	return domain.StudySession{
		Type:            domain.SessionTypeReview,
		DurationSeconds: 300,
		Outcomes:        outcomes,
		CompletedAt:     testNow,
	}
}

// racingTransactor commits a competing ingest before the first transaction
// it runs gets to commit.
type racingTransactor struct {
	store.Transactor
	race  func(ctx context.Context) error
	raced atomic.Bool
	calls atomic.Int32
}

func (r *racingTransactor) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, stores store.Stores) error,
) error {
	r.calls.Add(1)
	return r.Transactor.WithinTransaction(ctx, func(ctx context.Context, stores store.Stores) error {
		if err := fn(ctx, stores); err != nil {
			return err
		}
		if r.raced.CompareAndSwap(false, true) {
			return r.race(ctx)
		}
		return nil
	})
}

type conflictingTransactor struct {
	calls atomic.Int32
}

func (c *conflictingTransactor) WithinTransaction(
	ctx context.Context,
	fn func(ctx context.Context, stores store.Stores) error,
) error {
	c.calls.Add(1)
	return store.ErrConcurrencyConflict
}

func TestIngest_AppliesOutcomesInOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	summary, err := f.processor(nil).Ingest(ctx, f.userID, reviewSession(
		domain.Outcome{Word: "LUCID", Correct: true},
		domain.Outcome{Word: "serendipity", Correct: false},
		domain.Outcome{Word: "lucid", Correct: true},
	))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, summary.SessionID)
	assert.Equal(t, 2, summary.CorrectCount)
	require.Len(t, summary.Results, 3)

	assert.Equal(t, domain.OutcomeResult{
		Word: "lucid", Correct: true, LevelBefore: 0, LevelAfter: 1,
		ConfidenceScore: summary.Results[0].ConfidenceScore, NextDueAt: testNow.AddDate(0, 0, 1),
	}, summary.Results[0])
	assert.Equal(t, "Serendipity", summary.Results[1].Word)
	assert.Equal(t, 0, summary.Results[1].LevelAfter)
	assert.Equal(t, 1, summary.Results[2].LevelBefore, "repeat word starts from the first outcome")
	assert.Equal(t, 2, summary.Results[2].LevelAfter)
	assert.Equal(t, testNow.AddDate(0, 0, 3), summary.Results[2].NextDueAt)

	lucid, err := f.stores.Mastery.Get(ctx, f.userID, "lucid")
	require.NoError(t, err)
	assert.Equal(t, 2, lucid.MasteryLevel)
	assert.Equal(t, 2, lucid.TotalAttempts)
	assert.Equal(t, lucid.CorrectCount+lucid.IncorrectCount, lucid.TotalAttempts)

	logged, err := f.stores.Sessions.ListRecent(ctx, f.userID, 10)
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, summary.SessionID, logged[0].ID)
	assert.Equal(t, f.userID, logged[0].UserID)
	assert.Equal(t, "Serendipity", logged[0].Outcomes[1].Word)

	assert.Equal(t, 1, summary.Streak.CurrentStreak)
	assert.Equal(t, 1, summary.Streak.LongestStreak)
}

func TestIngest_Streak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		current     int
		longest     int
		last        time.Time
		wantCurrent int
		wantLongest int
	}{
		{"studied yesterday", 5, 5, testNow.AddDate(0, 0, -1), 6, 6},
		{"studied yesterday below longest", 2, 9, testNow.AddDate(0, 0, -1), 3, 9},
		{"gap of two days", 5, 7, testNow.AddDate(0, 0, -2), 1, 7},
		{"already studied today", 4, 4, testNow.Add(-2 * time.Hour), 4, 4},
		{"late last night counts as yesterday", 1, 1, domain.StudyDay(testNow).Add(-time.Minute), 2, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.putStreak(t, tc.current, tc.longest, tc.last)

			summary, err := f.processor(nil).Ingest(context.Background(), f.userID,
				reviewSession(domain.Outcome{Word: "brisk", Correct: true}))
			require.NoError(t, err)
			assert.Equal(t, tc.wantCurrent, summary.Streak.CurrentStreak)
			assert.Equal(t, tc.wantLongest, summary.Streak.LongestStreak)

			stored, err := f.stores.Streaks.Get(context.Background(), f.userID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantCurrent, stored.CurrentStreak)
			assert.Equal(t, domain.StudyDay(testNow), *stored.LastStudyDate)
		})
	}
}

func TestIngest_RejectsInvalidSessions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session domain.StudySession
		wantErr error
	}{
		{
			name:    "zero duration",
			session: domain.StudySession{Type: domain.SessionTypeReview, CompletedAt: testNow},
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown type",
			session: domain.StudySession{
				Type: "quiz", DurationSeconds: 60, CompletedAt: testNow,
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "empty test",
			session: domain.StudySession{
				Type: domain.SessionTypeTest, DurationSeconds: 60, CompletedAt: testNow,
			},
			wantErr: domain.ErrEmptySession,
		},
		{
			name: "completed in the future",
			session: domain.StudySession{
				Type: domain.SessionTypeReading, DurationSeconds: 60,
				CompletedAt: testNow.Add(session.MaxClockSkew + time.Second),
			},
			wantErr: domain.ErrValidation,
		},
		{
			name: "unknown word",
			session: reviewSession(
				domain.Outcome{Word: "lucid", Correct: true},
				domain.Outcome{Word: "quixotic", Correct: true},
			),
			wantErr: domain.ErrInvalidReference,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()

			_, err := f.processor(nil).Ingest(ctx, f.userID, tc.session)
			assert.ErrorIs(t, err, tc.wantErr)

			words, err := f.stores.Mastery.ListWords(ctx, f.userID)
			require.NoError(t, err)
			assert.Empty(t, words)
			logged, err := f.stores.Sessions.ListRecent(ctx, f.userID, 10)
			require.NoError(t, err)
			assert.Empty(t, logged)
		})
	}
}

func TestIngest_EmptyReadingSessionIsAllowed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	summary, err := f.processor(nil).Ingest(context.Background(), f.userID, domain.StudySession{
		Type:            domain.SessionTypeReading,
		DurationSeconds: 120,
	})
	require.NoError(t, err)
	assert.Empty(t, summary.Results)
	assert.Equal(t, testNow, summary.CompletedAt, "completion time defaults to now")
	assert.Equal(t, 1, summary.Streak.CurrentStreak)
}

func TestIngest_GoalProgress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	weekStart, _ := domain.WeekWindow(testNow, time.Monday)

	f.putGoal(t, domain.GoalTypeWords, weekStart)
	f.putGoal(t, domain.GoalTypeTime, weekStart)
	f.putGoal(t, domain.GoalTypeTests, weekStart)
	f.putGoal(t, domain.GoalTypeStories, weekStart)

	summary, err := f.processor(nil).Ingest(ctx, f.userID, domain.StudySession{
		Type:            domain.SessionTypeTest,
		DurationSeconds: 90,
		CompletedAt:     testNow,
		Outcomes: []domain.Outcome{
			{Word: "lucid", Correct: true},
			{Word: "brisk", Correct: false},
			{Word: "lucid", Correct: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.GoalType{domain.GoalTypeWords, domain.GoalTypeTime, domain.GoalTypeTests},
		summary.GoalsUpdated)

	want := map[domain.GoalType]int{
		domain.GoalTypeWords:   2,
		domain.GoalTypeTime:    2,
		domain.GoalTypeTests:   1,
		domain.GoalTypeStories: 0,
	}
	for goalType, current := range want {
		goal, err := f.stores.Goals.Get(ctx, f.userID, goalType)
		require.NoError(t, err)
		assert.Equal(t, current, goal.Current, goalType)
	}
}

func TestIngest_ExpiredGoalsAreUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	weekStart, _ := domain.WeekWindow(testNow, time.Monday)
	f.putGoal(t, domain.GoalTypeStories, weekStart.AddDate(0, 0, -7))

	summary, err := f.processor(nil).Ingest(ctx, f.userID, domain.StudySession{
		Type:            domain.SessionTypeReading,
		DurationSeconds: 600,
		CompletedAt:     testNow,
	})
	require.NoError(t, err)
	assert.Empty(t, summary.GoalsUpdated)

	goal, err := f.stores.Goals.Get(ctx, f.userID, domain.GoalTypeStories)
	require.NoError(t, err)
	assert.Zero(t, goal.Current)
}

func TestIngest_DuplicateSessionRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	processor := f.processor(nil)

	s := reviewSession(domain.Outcome{Word: "lucid", Correct: true})
	s.ID = uuid.New()

	_, err := processor.Ingest(ctx, f.userID, s)
	require.NoError(t, err)

	_, err = processor.Ingest(ctx, f.userID, s)
	assert.ErrorIs(t, err, store.ErrSessionExists)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	record, err := f.stores.Mastery.Get(ctx, f.userID, "lucid")
	require.NoError(t, err)
	assert.Equal(t, 1, record.TotalAttempts, "mastery update of the rejected ingest is rolled back")
	assert.Equal(t, 1, record.MasteryLevel)
}

func TestIngest_SerializesConcurrentUpdatesOfOneWord(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.putLevel(t, "lucid", 2)

	competitor := f.processor(nil)
	racing := &racingTransactor{
		Transactor: f.backend,
		race: func(ctx context.Context) error {
			_, err := competitor.Ingest(ctx, f.userID, reviewSession(domain.Outcome{Word: "lucid", Correct: false}))
			return err
		},
	}

	summary, err := f.processor(racing).Ingest(ctx, f.userID,
		reviewSession(domain.Outcome{Word: "lucid", Correct: true}))
	require.NoError(t, err)

	assert.Equal(t, int32(2), racing.calls.Load())
	assert.Equal(t, 1, summary.Results[0].LevelBefore, "retry observes the competing write")
	assert.Equal(t, 2, summary.Results[0].LevelAfter)

	record, err := f.stores.Mastery.Get(ctx, f.userID, "lucid")
	require.NoError(t, err)
	assert.Equal(t, 2, record.MasteryLevel)
	assert.Equal(t, 4, record.TotalAttempts)
	assert.Equal(t, 1, record.IncorrectCount)

	logged, err := f.stores.Sessions.ListRecent(ctx, f.userID, 10)
	require.NoError(t, err)
	assert.Len(t, logged, 2)
}

func TestIngest_ConcurrentIngestsAllCount(t *testing.T) {
	t.Parallel()

	const workers = 8

	f := newFixture(t)
	processor := f.processor(nil, session.WithMaxAttempts(2*workers))

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := processor.Ingest(context.Background(), f.userID,
				reviewSession(domain.Outcome{Word: "brisk", Correct: true}))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	record, err := f.stores.Mastery.Get(context.Background(), f.userID, "brisk")
	require.NoError(t, err)
	assert.Equal(t, workers, record.TotalAttempts)
	assert.Equal(t, domain.MaxMasteryLevel, record.MasteryLevel)
	assert.Equal(t, int64(workers), record.Version)
}

func TestIngest_GivesUpAfterRepeatedConflicts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	tx := &conflictingTransactor{}

	_, err := f.processor(tx).Ingest(context.Background(), f.userID,
		reviewSession(domain.Outcome{Word: "lucid", Correct: true}))
	assert.ErrorIs(t, err, store.ErrPersistenceFailure)
	assert.Equal(t, int32(store.DefaultMaxAttempts), tx.calls.Load())
}

func TestIngest_CancelledContextWritesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.processor(nil).Ingest(ctx, f.userID, reviewSession(domain.Outcome{Word: "lucid", Correct: true}))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = f.stores.Mastery.Get(context.Background(), f.userID, "lucid")
	assert.ErrorIs(t, err, store.ErrMasteryRecordNotFound)
}

func TestIngest_ClockSkewIsPulledBackToNow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	sess := reviewSession(domain.Outcome{Word: "brisk", Correct: true})
	sess.CompletedAt = testNow.Add(time.Minute)

	summary, err := f.processor(nil).Ingest(context.Background(), f.userID, sess)
	require.NoError(t, err)
	assert.True(t, testNow.Equal(summary.CompletedAt), summary.CompletedAt)
	assert.True(t, testNow.AddDate(0, 0, 1).Equal(summary.Results[0].NextDueAt))
}

func TestIngest_BackdatedSessionsCannotInflateStreak(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := f.processor(nil)

	for days := 30; days >= 1; days-- {
		sess := reviewSession(domain.Outcome{Word: "brisk", Correct: true})
		sess.CompletedAt = testNow.AddDate(0, 0, -days)
		_, err := p.Ingest(ctx, f.userID, sess)
		require.NoError(t, err)
	}

	streak, err := f.stores.Streaks.Get(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.Equal(t, 1, streak.LongestStreak)
	assert.Equal(t, domain.StudyDay(testNow), *streak.LastStudyDate)

	record, err := f.stores.Mastery.Get(ctx, f.userID, "brisk")
	require.NoError(t, err)
	assert.False(t, record.LastReviewedAt.After(testNow))
}

func TestIngest_BackdatedSessionKeepsLatestReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.putLevel(t, "lucid", 2)
	lastReview := testNow.AddDate(0, 0, -10)

	sess := reviewSession(domain.Outcome{Word: "lucid", Correct: true})
	sess.CompletedAt = testNow.AddDate(0, 0, -20)
	_, err := f.processor(nil).Ingest(ctx, f.userID, sess)
	require.NoError(t, err)

	record, err := f.stores.Mastery.Get(ctx, f.userID, "lucid")
	require.NoError(t, err)
	assert.True(t, lastReview.Equal(record.LastReviewedAt), record.LastReviewedAt)
	assert.Equal(t, 3, record.MasteryLevel)
}
