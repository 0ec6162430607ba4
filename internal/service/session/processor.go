// Package session ingests completed study sessions. One ingest updates the
// mastery record of every word in the session, the user's streak and weekly
// goal progress, and appends the session to the log, all in one transaction.
package session

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
	"github.com/lexiloop/lexiloop-api/internal/service/mastery"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

// Processor ingests completed study sessions.
type Processor interface {
	// Ingest records a completed session for userID.
	//
	// This method performs several operations within a single transaction:
	// 1. Applies every outcome to its mastery record, in session order, so a
	//    word that appears twice sees the result of its first outcome
	// 2. Updates the user's study streak
	// 3. Adds progress to the user's active weekly goals
	// 4. Appends the session to the session log
	//
	// If another request changes any of the same records first, the whole
	// transaction is rolled back and retried with fresh reads.
	//
	// Parameters:
	//   - ctx: Context for the operation; cancelling it before commit leaves
	//     no partial state
	//   - userID: UUID of the authenticated user, overriding any user in session
	//   - session: The completed session. A zero ID or completion time is
	//     filled in. Completion times in the future are rejected; the streak
	//     always counts the day the session is processed.
	//
	// Returns:
	//   - (*domain.SessionSummary, nil): Per-word results, the new streak and
	//     the goals that received progress
	//   - (nil, domain.ErrValidation): If the session is malformed
	//   - (nil, domain.ErrEmptySession): If a test session has no outcomes
	//   - (nil, domain.ErrInvalidReference): If an outcome names an unknown word
	//   - (nil, store.ErrSessionExists): If the session ID was already ingested
	//   - (nil, store.ErrPersistenceFailure): If the store is unavailable or
	//     every attempt lost a race
	Ingest(ctx context.Context, userID uuid.UUID, session domain.StudySession) (*domain.SessionSummary, error)
}

// Verify interface compliance at compile time
var _ Processor = (*processorImpl)(nil)

// Option configures the processor.
type Option func(*processorImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *processorImpl) {
		if now != nil {
			p.now = now
		}
	}
}

// WithMaxAttempts sets how many times a conflicting ingest is attempted.
func WithMaxAttempts(n int) Option {
	return func(p *processorImpl) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// MaxClockSkew is how far a session's completion time may run ahead of the
// server clock. Times inside the allowance are pulled back to now.
const MaxClockSkew = 5 * time.Minute

type processorImpl struct {
	tx          store.Transactor
	catalog     mastery.Catalog
	policy      mastery.OutcomePolicy
	now         func() time.Time
	maxAttempts int
	logger      *slog.Logger
}

// NewProcessor creates a new session Processor.
func NewProcessor(
	tx store.Transactor,
	catalog mastery.Catalog,
	policy mastery.OutcomePolicy,
	logger *slog.Logger,
	opts ...Option,
) Processor {
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

	p := &processorImpl{
		tx:          tx,
		catalog:     catalog,
		policy:      policy,
		now:         time.Now,
		maxAttempts: store.DefaultMaxAttempts,
		logger:      logger.With(slog.String("component", "session_processor")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest implements Processor.Ingest
func (p *processorImpl) Ingest(
	ctx context.Context,
	userID uuid.UUID,
	session domain.StudySession,
) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, p.logger)

	prepared, err := p.prepare(userID, session)
	if err != nil {
		log.Warn("rejected study session",
			slog.String("user_id", userID.String()),
			slog.String("session_type", string(session.Type)),
			slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("ingesting study session",
		slog.String("user_id", userID.String()),
		slog.String("session_id", prepared.ID.String()),
		slog.String("session_type", string(prepared.Type)),
		slog.Int("outcomes", len(prepared.Outcomes)))

	var summary *domain.SessionSummary
	err = store.RetryOnConflict(ctx, p.maxAttempts, func(ctx context.Context, attempt int) error {
		return p.tx.WithinTransaction(ctx, func(ctx context.Context, stores store.Stores) error {
			result, err := p.apply(ctx, stores, prepared)
			if err != nil {
				return err
			}
			summary = result
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrSessionExists) {
			log.Warn("study session already ingested",
				slog.String("user_id", userID.String()),
				slog.String("session_id", prepared.ID.String()))
			return nil, err
		}
		log.Error("failed to ingest study session",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("session_id", prepared.ID.String()))
		return nil, service.NewServiceError("ingest_session", "failed to record session", err)
	}

	log.Info("study session ingested",
		slog.String("user_id", userID.String()),
		slog.String("session_id", prepared.ID.String()),
		slog.Int("current_streak", summary.Streak.CurrentStreak),
		slog.Int("goals_updated", len(summary.GoalsUpdated)))
	return summary, nil
}

// prepare validates the session and resolves every outcome word to its
// catalog spelling. Nothing is written when it fails.
func (p *processorImpl) prepare(userID uuid.UUID, session domain.StudySession) (*domain.StudySession, error) {
	prepared := session
	prepared.UserID = userID
	if prepared.ID == uuid.Nil {
		prepared.ID = uuid.New()
	}
	now := p.now().UTC()
	switch {
	case prepared.CompletedAt.IsZero():
		prepared.CompletedAt = now
	case prepared.CompletedAt.After(now.Add(MaxClockSkew)):
		return nil, domain.NewValidationError("completed_at", "cannot be in the future", nil)
	case prepared.CompletedAt.After(now):
		prepared.CompletedAt = now
	}
	prepared.CompletedAt = prepared.CompletedAt.UTC()

	if err := prepared.Validate(); err != nil {
		return nil, err
	}

	prepared.Outcomes = make([]domain.Outcome, len(session.Outcomes))
	for i, outcome := range session.Outcomes {
		entry, err := p.catalog.Lookup(outcome.Word)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: %q", domain.ErrInvalidReference, outcome.Word)
			}
			return nil, err
		}
		prepared.Outcomes[i] = domain.Outcome{Word: entry.Word, Correct: outcome.Correct}
	}

	return &prepared, nil
}

// apply runs one attempt of the ingest against stores. It is called inside
// a transaction and redoes every read.
func (p *processorImpl) apply(
	ctx context.Context,
	stores store.Stores,
	session *domain.StudySession,
) (*domain.SessionSummary, error) {
	now := p.now().UTC()
	summary := &domain.SessionSummary{
		SessionID:   session.ID,
		Type:        session.Type,
		CompletedAt: session.CompletedAt,
		Results:     make([]domain.OutcomeResult, 0, len(session.Outcomes)),
	}

	for _, outcome := range session.Outcomes {
		var before int
		record, err := mastery.Apply(ctx, stores.Mastery, session.UserID, outcome.Word, session.CompletedAt,
			func(r *domain.MasteryRecord) (*domain.MasteryRecord, error) {
				before = r.MasteryLevel
				return p.policy.ApplyOutcome(r, outcome.Correct, reviewTime(r, session.CompletedAt))
			})
		if err != nil {
			return nil, fmt.Errorf("failed to update mastery of %q: %w", outcome.Word, err)
		}

		if outcome.Correct {
			summary.CorrectCount++
		}
		summary.Results = append(summary.Results, domain.OutcomeResult{
			Word:            record.Word,
			Correct:         outcome.Correct,
			LevelBefore:     before,
			LevelAfter:      record.MasteryLevel,
			ConfidenceScore: record.ConfidenceScore,
			NextDueAt:       record.NextDueAt,
		})
	}

	streak, err := p.updateStreak(ctx, stores.Streaks, session, now)
	if err != nil {
		return nil, err
	}
	summary.Streak = *streak

	for _, progress := range goalProgress(session) {
		updated, err := stores.Goals.AddProgress(ctx, session.UserID, progress.goalType, progress.amount, now)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s goal progress: %w", progress.goalType, err)
		}
		if updated {
			summary.GoalsUpdated = append(summary.GoalsUpdated, progress.goalType)
		}
	}

	if err := stores.Sessions.Append(ctx, session); err != nil {
		return nil, err
	}

	return summary, nil
}

// updateStreak writes the streak state even when the day does not change,
// so concurrent ingests for one user always conflict on it.
func (p *processorImpl) updateStreak(
	ctx context.Context,
	streaks store.StreakStore,
	session *domain.StudySession,
	now time.Time,
) (*domain.StreakState, error) {
	current, err := streaks.Get(ctx, session.UserID)
	switch {
	case errors.Is(err, store.ErrStreakNotFound):
		current = domain.NewStreakState(session.UserID)
	case err != nil:
		return nil, fmt.Errorf("failed to read streak: %w", err)
	}

	next := current.RecordStudy(now)
	next.UpdatedAt = now

	version, err := streaks.WriteIfUnchanged(ctx, next, current.Version)
	if err != nil {
		return nil, err
	}
	next.Version = version
	return next, nil
}

// reviewTime is when an outcome counts as reviewed: the session's completion
// time, but never before the record's last review.
func reviewTime(r *domain.MasteryRecord, completedAt time.Time) time.Time {
	if r.LastReviewedAt.After(completedAt) {
		return r.LastReviewedAt
	}
	return completedAt
}

type progressAmount struct {
	goalType domain.GoalType
	amount   int
}

// goalProgress lists what a session contributes to each goal type.
func goalProgress(session *domain.StudySession) []progressAmount {
	var result []progressAmount
	if n := len(session.UniqueWords()); n > 0 {
		result = append(result, progressAmount{domain.GoalTypeWords, n})
	}
	result = append(result, progressAmount{domain.GoalTypeTime, session.DurationMinutes()})
	switch session.Type {
	case domain.SessionTypeTest:
		result = append(result, progressAmount{domain.GoalTypeTests, 1})
	case domain.SessionTypeReading:
		result = append(result, progressAmount{domain.GoalTypeStories, 1})
	}
	return result
}
