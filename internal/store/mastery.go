package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
)

// MasteryStore defines the interface for per-user, per-word mastery records.
// Records are written with optimistic concurrency: every write names the
// version it expects to replace and fails with ErrConcurrencyConflict when the
// stored version has moved on.
type MasteryStore interface {
	// Get retrieves the record for (userID, word) including its version.
	// Returns ErrMasteryRecordNotFound if the user has never studied the word.
	Get(ctx context.Context, userID uuid.UUID, word string) (*domain.MasteryRecord, error)

	// WriteIfUnchanged stores record if the stored version equals
	// expectedVersion. An expectedVersion of 0 means the record must not
	// exist yet. On success the new version is returned.
	// Returns ErrConcurrencyConflict if the version check fails, or
	// ErrInvalidEntity if the record fails validation or names a word that
	// is not in the vocabulary.
	WriteIfUnchanged(ctx context.Context, record *domain.MasteryRecord, expectedVersion int64) (int64, error)

	// ListDue returns up to limit records whose next due time is at or
	// before now, ordered by next due time, then confidence, then word.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]*domain.MasteryRecord, error)

	// ListWords returns every word the user has a record for.
	ListWords(ctx context.Context, userID uuid.UUID) ([]string, error)

	// Summarize aggregates the user's records. Words due at or before now
	// are counted in DueNow.
	Summarize(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.MasterySummary, error)
}

// StreakStore defines the interface for per-user study streak state.
type StreakStore interface {
	// Get retrieves the user's streak state.
	// Returns ErrStreakNotFound if the user has never completed a session.
	Get(ctx context.Context, userID uuid.UUID) (*domain.StreakState, error)

	// WriteIfUnchanged stores state if the stored version equals
	// expectedVersion, with 0 meaning no state exists yet.
	// Returns the new version or ErrConcurrencyConflict.
	WriteIfUnchanged(ctx context.Context, state *domain.StreakState, expectedVersion int64) (int64, error)
}

// SessionStore defines the interface for the append-only study session log.
type SessionStore interface {
	// Append adds a completed session to the log.
	// Returns ErrSessionExists if a session with the same ID is already logged.
	Append(ctx context.Context, session *domain.StudySession) error

	// ListRecent returns up to limit of the user's sessions, newest first.
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.StudySession, error)

	// Summarize aggregates the user's session log.
	Summarize(ctx context.Context, userID uuid.UUID) (*domain.SessionLogSummary, error)
}

// GoalStore defines the interface for weekly goals. A user has at most one
// goal per goal type.
type GoalStore interface {
	// Get retrieves the user's goal of the given type.
	// Returns ErrGoalNotFound if none is set.
	Get(ctx context.Context, userID uuid.UUID, goalType domain.GoalType) (*domain.WeeklyGoal, error)

	// Upsert creates the goal or replaces the target and window of the
	// existing goal of the same type. When the window is unchanged the stored
	// progress is kept and goal.Current is ignored; a new window starts from
	// goal.Current. CreatedAt is never changed once stored.
	Upsert(ctx context.Context, goal *domain.WeeklyGoal) error

	// ListByUser returns all of the user's goals ordered by goal type.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WeeklyGoal, error)

	// AddProgress atomically adds amount to the goal's current value when
	// now falls inside the goal window. It reports whether a goal was updated.
	AddProgress(
		ctx context.Context,
		userID uuid.UUID,
		goalType domain.GoalType,
		amount int,
		now time.Time,
	) (bool, error)
}

// VocabularyStore persists catalog entries so mastery records can reference
// them.
type VocabularyStore interface {
	// Seed inserts entries that are not stored yet and returns how many were added.
	Seed(ctx context.Context, entries []domain.Vocabulary) (int, error)
}
