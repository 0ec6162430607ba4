package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionType identifies the kind of study interaction.
type SessionType string

// Supported session types.
const (
	SessionTypeReading SessionType = "reading"
	SessionTypeTest    SessionType = "test"
	SessionTypeReview  SessionType = "review"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeReading, SessionTypeTest, SessionTypeReview:
		return true
	default:
		return false
	}
}

// Outcome is the result of one exposure to a word within a session.
type Outcome struct {
	Word    string `json:"word"`
	Correct bool   `json:"correct"`
}

// StudySession is one completed learning or test interaction. Sessions are
// append-only log entries and are never modified once recorded.
type StudySession struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"user_id"`
	Type            SessionType `json:"type"`
	DurationSeconds int         `json:"duration_seconds"`
	Outcomes        []Outcome   `json:"outcomes"`
	CompletedAt     time.Time   `json:"completed_at"`
}

// Validate checks the structural rules of a session. Catalog membership of
// outcome words is checked by the session processor.
func (s *StudySession) Validate() error {
	if s.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if s.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if !s.Type.Valid() {
		return NewValidationError("type", "must be one of reading, test, review", nil)
	}
	if s.DurationSeconds <= 0 {
		return NewValidationError("duration_seconds", "must be greater than zero", nil)
	}
	if s.CompletedAt.IsZero() {
		return NewValidationError("completed_at", "cannot be empty", nil)
	}
	if s.Type == SessionTypeTest && len(s.Outcomes) == 0 {
		return ErrEmptySession
	}
	for _, o := range s.Outcomes {
		if strings.TrimSpace(o.Word) == "" {
			return NewValidationError("outcomes", "word cannot be empty", nil)
		}
	}
	return nil
}

// UniqueWords returns the distinct outcome words in first-seen order.
func (s *StudySession) UniqueWords() []string {
	seen := make(map[string]struct{}, len(s.Outcomes))
	words := make([]string, 0, len(s.Outcomes))
	for _, o := range s.Outcomes {
		if _, ok := seen[o.Word]; ok {
			continue
		}
		seen[o.Word] = struct{}{}
		words = append(words, o.Word)
	}
	return words
}

// DurationMinutes returns the session length in whole minutes, rounded up.
func (s *StudySession) DurationMinutes() int {
	return (s.DurationSeconds + 59) / 60
}

// OutcomeResult reports the mastery change caused by one outcome.
type OutcomeResult struct {
	Word            string    `json:"word"`
	Correct         bool      `json:"correct"`
	LevelBefore     int       `json:"level_before"`
	LevelAfter      int       `json:"level_after"`
	ConfidenceScore float64   `json:"confidence_score"`
	NextDueAt       time.Time `json:"next_due_at"`
}

// SessionSummary is returned after a session has been ingested.
type SessionSummary struct {
	SessionID    uuid.UUID       `json:"session_id"`
	Type         SessionType     `json:"type"`
	CompletedAt  time.Time       `json:"completed_at"`
	Results      []OutcomeResult `json:"results"`
	CorrectCount int             `json:"correct_count"`
	Streak       StreakState     `json:"streak"`
	GoalsUpdated []GoalType      `json:"goals_updated,omitempty"`
}
