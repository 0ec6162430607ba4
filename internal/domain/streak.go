package domain

import (
	"time"

	"github.com/google/uuid"
)

// StreakState tracks consecutive study days for a user. It is only changed
// as a side effect of session ingestion.
type StreakState struct {
	UserID        uuid.UUID  `json:"user_id"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`
	Version       int64      `json:"-"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewStreakState returns the state of a user who has never studied.
func NewStreakState(userID uuid.UUID) *StreakState {
	return &StreakState{UserID: userID}
}

// StudyDay truncates t to its UTC calendar day.
func StudyDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordStudy returns the state after a session completed at studiedAt.
// A session on the last study day changes nothing, one on the following day
// extends the streak, and anything later starts a new streak of 1. Sessions
// dated before the last study day leave the streak untouched.
func (s *StreakState) RecordStudy(studiedAt time.Time) *StreakState {
	next := *s
	day := StudyDay(studiedAt)

	switch {
	case s.LastStudyDate == nil:
		next.CurrentStreak = 1
	case !day.After(StudyDay(*s.LastStudyDate)):
		return &next
	case StudyDay(*s.LastStudyDate).AddDate(0, 0, 1).Equal(day):
		next.CurrentStreak = s.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}

	next.LastStudyDate = &day
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	return &next
}

// Validate checks the streak counters.
func (s *StreakState) Validate() error {
	if s.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if s.CurrentStreak < 0 || s.LongestStreak < 0 {
		return NewValidationError("streak", "cannot be negative", nil)
	}
	if s.CurrentStreak > s.LongestStreak {
		return NewValidationError("longest_streak", "cannot be less than current_streak", nil)
	}
	return nil
}
