package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// lockedStores applies each operation to the live state under the backend lock.
type lockedStores struct {
	b *Backend
}

type (
	lockedStreaks  lockedStores
	lockedSessions lockedStores
	lockedGoals    lockedStores
)

func (l *lockedStores) with(fn func(s *state)) {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	fn(l.b.live)
}

func (l *lockedStores) Get(_ context.Context, userID uuid.UUID, word string) (rec *domain.MasteryRecord, err error) {
	l.with(func(s *state) { rec, err = s.getMastery(userID, word) })
	return rec, err
}

func (l *lockedStores) WriteIfUnchanged(
	_ context.Context,
	record *domain.MasteryRecord,
	expectedVersion int64,
) (v int64, err error) {
	l.with(func(s *state) { v, err = s.writeMastery(record, expectedVersion) })
	return v, err
}

func (l *lockedStores) ListDue(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) (due []*domain.MasteryRecord, err error) {
	l.with(func(s *state) { due = s.listDue(userID, now, limit) })
	return due, nil
}

func (l *lockedStores) ListWords(_ context.Context, userID uuid.UUID) (words []string, err error) {
	l.with(func(s *state) { words = s.listWords(userID) })
	return words, nil
}

func (l *lockedStores) Summarize(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
) (summary *domain.MasterySummary, err error) {
	l.with(func(s *state) { summary = s.summarizeMastery(userID, now) })
	return summary, nil
}

func (l *lockedStreaks) Get(_ context.Context, userID uuid.UUID) (st *domain.StreakState, err error) {
	(*lockedStores)(l).with(func(s *state) { st, err = s.getStreak(userID) })
	return st, err
}

func (l *lockedStreaks) WriteIfUnchanged(
	_ context.Context,
	streak *domain.StreakState,
	expectedVersion int64,
) (v int64, err error) {
	(*lockedStores)(l).with(func(s *state) { v, err = s.writeStreak(streak, expectedVersion) })
	return v, err
}

func (l *lockedSessions) Append(_ context.Context, session *domain.StudySession) (err error) {
	(*lockedStores)(l).with(func(s *state) { err = s.appendSession(session) })
	return err
}

func (l *lockedSessions) ListRecent(
	_ context.Context,
	userID uuid.UUID,
	limit int,
) (sessions []*domain.StudySession, err error) {
	(*lockedStores)(l).with(func(s *state) { sessions = s.listRecentSessions(userID, limit) })
	return sessions, nil
}

func (l *lockedSessions) Summarize(
	_ context.Context,
	userID uuid.UUID,
) (summary *domain.SessionLogSummary, err error) {
	(*lockedStores)(l).with(func(s *state) { summary = s.summarizeSessions(userID) })
	return summary, nil
}

func (l *lockedGoals) Get(
	_ context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
) (goal *domain.WeeklyGoal, err error) {
	(*lockedStores)(l).with(func(s *state) { goal, err = s.getGoal(userID, goalType) })
	return goal, err
}

func (l *lockedGoals) Upsert(_ context.Context, goal *domain.WeeklyGoal) (err error) {
	(*lockedStores)(l).with(func(s *state) { err = s.upsertGoal(goal) })
	return err
}

func (l *lockedGoals) ListByUser(_ context.Context, userID uuid.UUID) (goals []*domain.WeeklyGoal, err error) {
	(*lockedStores)(l).with(func(s *state) { goals = s.listGoals(userID) })
	return goals, nil
}

func (l *lockedGoals) AddProgress(
	_ context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
	amount int,
	now time.Time,
) (ok bool, err error) {
	(*lockedStores)(l).with(func(s *state) { ok, err = s.addProgress(userID, goalType, amount, now) })
	return ok, err
}

// txStores reads and writes a private snapshot and journals every write so
// it can be replayed against the live state on commit.
type txStores struct {
	snapshot *state
	journal  []func(s *state) error
}

type (
	txStreaks  txStores
	txSessions txStores
	txGoals    txStores
)

func (t *txStores) stores() store.Stores {
	return store.Stores{
		Mastery:  t,
		Streaks:  (*txStreaks)(t),
		Sessions: (*txSessions)(t),
		Goals:    (*txGoals)(t),
	}
}

// apply runs op on the snapshot and, if it succeeds, journals it for commit.
func (t *txStores) apply(op func(s *state) error) error {
	if err := op(t.snapshot); err != nil {
		return err
	}
	t.journal = append(t.journal, op)
	return nil
}

func (t *txStores) Get(_ context.Context, userID uuid.UUID, word string) (*domain.MasteryRecord, error) {
	return t.snapshot.getMastery(userID, word)
}

func (t *txStores) WriteIfUnchanged(
	_ context.Context,
	record *domain.MasteryRecord,
	expectedVersion int64,
) (int64, error) {
	rec := record.Clone()
	err := t.apply(func(s *state) error {
		_, err := s.writeMastery(rec, expectedVersion)
		return err
	})
	if err != nil {
		return 0, err
	}
	return expectedVersion + 1, nil
}

func (t *txStores) ListDue(
	_ context.Context,
	userID uuid.UUID,
	now time.Time,
	limit int,
) ([]*domain.MasteryRecord, error) {
	return t.snapshot.listDue(userID, now, limit), nil
}

func (t *txStores) ListWords(_ context.Context, userID uuid.UUID) ([]string, error) {
	return t.snapshot.listWords(userID), nil
}

func (t *txStores) Summarize(_ context.Context, userID uuid.UUID, now time.Time) (*domain.MasterySummary, error) {
	return t.snapshot.summarizeMastery(userID, now), nil
}

func (t *txStreaks) Get(_ context.Context, userID uuid.UUID) (*domain.StreakState, error) {
	return t.snapshot.getStreak(userID)
}

func (t *txStreaks) WriteIfUnchanged(
	_ context.Context,
	streak *domain.StreakState,
	expectedVersion int64,
) (int64, error) {
	st := *streak
	err := (*txStores)(t).apply(func(s *state) error {
		_, err := s.writeStreak(&st, expectedVersion)
		return err
	})
	if err != nil {
		return 0, err
	}
	return expectedVersion + 1, nil
}

func (t *txSessions) Append(_ context.Context, session *domain.StudySession) error {
	sess := *session
	return (*txStores)(t).apply(func(s *state) error {
		return s.appendSession(&sess)
	})
}

func (t *txSessions) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]*domain.StudySession, error) {
	return t.snapshot.listRecentSessions(userID, limit), nil
}

func (t *txSessions) Summarize(_ context.Context, userID uuid.UUID) (*domain.SessionLogSummary, error) {
	return t.snapshot.summarizeSessions(userID), nil
}

func (t *txGoals) Get(_ context.Context, userID uuid.UUID, goalType domain.GoalType) (*domain.WeeklyGoal, error) {
	return t.snapshot.getGoal(userID, goalType)
}

func (t *txGoals) Upsert(_ context.Context, goal *domain.WeeklyGoal) error {
	g := *goal
	return (*txStores)(t).apply(func(s *state) error {
		return s.upsertGoal(&g)
	})
}

func (t *txGoals) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.WeeklyGoal, error) {
	return t.snapshot.listGoals(userID), nil
}

func (t *txGoals) AddProgress(
	_ context.Context,
	userID uuid.UUID,
	goalType domain.GoalType,
	amount int,
	now time.Time,
) (bool, error) {
	updated, err := t.snapshot.addProgress(userID, goalType, amount, now)
	if err != nil || !updated {
		return updated, err
	}
	t.journal = append(t.journal, func(s *state) error {
		_, err := s.addProgress(userID, goalType, amount, now)
		return err
	})
	return true, nil
}
