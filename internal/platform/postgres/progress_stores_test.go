package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreakStore(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2026, 10, 16, 21, 30, 0, 0, time.UTC)
	day := domain.StudyDay(now)

	t.Run("get", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresStreakStore(db, nil)

		mock.ExpectQuery(`SELECT .+ FROM streaks WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(
				[]string{"user_id", "current_streak", "longest_streak", "last_study_date", "version", "updated_at"},
			).AddRow(userID.String(), 5, 8, day, 3, now))

		state, err := s.Get(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 5, state.CurrentStreak)
		assert.Equal(t, 8, state.LongestStreak)
		require.NotNil(t, state.LastStudyDate)
		assert.Equal(t, day, *state.LastStudyDate)
		assert.Equal(t, int64(3), state.Version)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresStreakStore(db, nil)

		mock.ExpectQuery(`FROM streaks`).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		_, err := s.Get(context.Background(), userID)
		assert.ErrorIs(t, err, store.ErrStreakNotFound)
	})

	t.Run("first write inserts", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresStreakStore(db, nil)

		state := domain.NewStreakState(userID).RecordStudy(now)
		mock.ExpectExec(`INSERT INTO streaks`).WillReturnResult(sqlmock.NewResult(0, 1))

		version, err := s.WriteIfUnchanged(context.Background(), state, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), version)
	})

	t.Run("stale update conflicts", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresStreakStore(db, nil)

		state := domain.NewStreakState(userID).RecordStudy(now)
		mock.ExpectExec(`UPDATE streaks SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := s.WriteIfUnchanged(context.Background(), state, 2)
		assert.ErrorIs(t, err, store.ErrConcurrencyConflict)
	})
}

func TestSessionStore(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	completed := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	session := &domain.StudySession{
		ID:              uuid.New(),
		UserID:          userID,
		Type:            domain.SessionTypeTest,
		DurationSeconds: 300,
		Outcomes:        []domain.Outcome{{Word: "brave", Correct: true}},
		CompletedAt:     completed,
	}

	t.Run("append", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresSessionStore(db, nil)

		outcomes, err := json.Marshal(session.Outcomes)
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO study_sessions`).
			WithArgs(session.ID, userID, "test", 300, outcomes, completed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Append(context.Background(), session))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("append duplicate", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresSessionStore(db, nil)

		mock.ExpectExec(`INSERT INTO study_sessions`).WillReturnError(newPgError(uniqueViolationCode))

		err := s.Append(context.Background(), session)
		assert.ErrorIs(t, err, store.ErrSessionExists)
	})

	t.Run("list recent decodes outcomes", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresSessionStore(db, nil)

		mock.ExpectQuery(`SELECT .+ FROM study_sessions WHERE user_id = \$1 ORDER BY completed_at DESC, id ASC LIMIT 5`).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "user_id", "session_type", "duration_seconds", "outcomes", "completed_at"},
			).AddRow(session.ID.String(), userID.String(), "test", 300,
				[]byte(`[{"word":"brave","correct":true}]`), completed))

		sessions, err := s.ListRecent(context.Background(), userID, 5)
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, domain.SessionTypeTest, sessions[0].Type)
		assert.Equal(t, session.Outcomes, sessions[0].Outcomes)
	})

	t.Run("summarize", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresSessionStore(db, nil)

		later := completed.Add(2 * time.Hour)
		mock.ExpectQuery(`SELECT session_type, COUNT\(\*\).+FROM study_sessions WHERE user_id = \$1 GROUP BY session_type`).
			WillReturnRows(sqlmock.NewRows([]string{"session_type", "count", "seconds", "last"}).
				AddRow("test", 2, 600, completed).
				AddRow("reading", 1, 900, later))

		summary, err := s.Summarize(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.SessionCount)
		assert.Equal(t, int64(1500), summary.TotalStudySeconds)
		assert.Equal(t, 2, summary.SessionsByType[domain.SessionTypeTest])
		require.NotNil(t, summary.LastSessionAt)
		assert.Equal(t, later, *summary.LastSessionAt)
	})
}

func TestGoalStore(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	start, end := domain.WeekWindow(now, time.Monday)
	goalCols := []string{"user_id", "goal_type", "target", "current", "window_start", "window_end", "created_at", "updated_at"}

	t.Run("upsert", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		// progress made in the same window survives a target change
		mock.ExpectExec(`INSERT INTO weekly_goals .+ ON CONFLICT \(user_id, goal_type\) DO UPDATE .+` +
			`current = CASE WHEN weekly_goals\.window_start = EXCLUDED\.window_start THEN weekly_goals\.current`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.Upsert(context.Background(), &domain.WeeklyGoal{
			UserID: userID, Type: domain.GoalTypeWords, Target: 50,
			WindowStart: start, WindowEnd: end, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("upsert rejects invalid goal", func(t *testing.T) {
		t.Parallel()
		db, _ := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		err := s.Upsert(context.Background(), &domain.WeeklyGoal{
			UserID: userID, Type: domain.GoalTypeWords, Target: 0, WindowStart: start, WindowEnd: end,
		})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("list by user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		mock.ExpectQuery(`SELECT .+ FROM weekly_goals WHERE user_id = \$1 ORDER BY goal_type ASC`).
			WillReturnRows(sqlmock.NewRows(goalCols).
				AddRow(userID.String(), "time", 60, 15, start, end, now, now).
				AddRow(userID.String(), "words", 50, 20, start, end, now, now))

		goals, err := s.ListByUser(context.Background(), userID)
		require.NoError(t, err)
		require.Len(t, goals, 2)
		assert.Equal(t, domain.GoalTypeTime, goals[0].Type)
		assert.Equal(t, 20, goals[1].Current)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		mock.ExpectQuery(`FROM weekly_goals`).WillReturnRows(sqlmock.NewRows(goalCols))

		_, err := s.Get(context.Background(), userID, domain.GoalTypeStories)
		assert.ErrorIs(t, err, store.ErrGoalNotFound)
	})

	t.Run("add progress inside window", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		mock.ExpectExec(`UPDATE weekly_goals SET current = current \+ \$1, updated_at = \$2 WHERE`).
			WithArgs(7, now, "words", userID, now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))

		updated, err := s.AddProgress(context.Background(), userID, domain.GoalTypeWords, 7, now)
		require.NoError(t, err)
		assert.True(t, updated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("add progress without active goal", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		mock.ExpectExec(`UPDATE weekly_goals`).WillReturnResult(sqlmock.NewResult(0, 0))

		updated, err := s.AddProgress(context.Background(), userID, domain.GoalTypeTests, 1, now)
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("add progress rejects non-positive amount", func(t *testing.T) {
		t.Parallel()
		db, _ := newMockDB(t)
		s := NewPostgresGoalStore(db, nil)

		_, err := s.AddProgress(context.Background(), userID, domain.GoalTypeTests, 0, now)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestVocabularyStore_Seed(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	s := NewPostgresVocabularyStore(db, nil)

	mock.ExpectExec(`INSERT INTO vocabulary .+ ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := s.Seed(context.Background(), []domain.Vocabulary{
		{Word: "brave", Definition: "ready to face danger", Difficulty: 1, Synonyms: []string{"bold"}},
		{Word: "lucid", Definition: "clearly expressed", Difficulty: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		tr := NewTransactor(db, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM streaks`).WillReturnRows(sqlmock.NewRows([]string{"user_id"}))
		mock.ExpectCommit()

		err := tr.WithinTransaction(context.Background(), func(ctx context.Context, stores store.Stores) error {
			_, err := stores.Streaks.Get(ctx, userID)
			assert.ErrorIs(t, err, store.ErrStreakNotFound)
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on conflict", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		tr := NewTransactor(db, nil)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tr.WithinTransaction(context.Background(), func(ctx context.Context, stores store.Stores) error {
			return store.ErrConcurrencyConflict
		})
		assert.True(t, store.IsConflictError(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("serialization failure on commit is a conflict", func(t *testing.T) {
		t.Parallel()
		db, mock := newMockDB(t)
		tr := NewTransactor(db, nil)

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(newPgError(serializationFailureCode))

		err := tr.WithinTransaction(context.Background(), func(ctx context.Context, stores store.Stores) error {
			return nil
		})
		assert.True(t, store.IsConflictError(err))
	})

	t.Run("stores outside a transaction", func(t *testing.T) {
		t.Parallel()
		db, _ := newMockDB(t)
		stores := NewTransactor(db, nil).Stores()
		assert.NotNil(t, stores.Mastery)
		assert.NotNil(t, stores.Goals)
	})
}
