package domain

import (
	"time"

	"github.com/google/uuid"
)

// GoalType identifies what a weekly goal counts.
type GoalType string

// Supported goal types, in name order.
const (
	GoalTypeStories GoalType = "stories"
	GoalTypeTests   GoalType = "tests"
	GoalTypeTime    GoalType = "time"
	GoalTypeWords   GoalType = "words"
)

// Valid reports whether t is a known goal type.
func (t GoalType) Valid() bool {
	switch t {
	case GoalTypeWords, GoalTypeTime, GoalTypeStories, GoalTypeTests:
		return true
	default:
		return false
	}
}

// WeeklyGoal is a per-user target for one goal type within a fixed window
// [WindowStart, WindowEnd). Current only grows inside its window.
type WeeklyGoal struct {
	UserID      uuid.UUID `json:"user_id"`
	Type        GoalType  `json:"type"`
	Target      int       `json:"target"`
	Current     int       `json:"current"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Active reports whether now falls inside the goal window.
func (g *WeeklyGoal) Active(now time.Time) bool {
	return !now.Before(g.WindowStart) && now.Before(g.WindowEnd)
}

// Completed reports whether the target has been reached.
func (g *WeeklyGoal) Completed() bool {
	return g.Current >= g.Target
}

// Validate checks the goal fields.
func (g *WeeklyGoal) Validate() error {
	if g.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if !g.Type.Valid() {
		return NewValidationError("type", "must be one of words, time, stories, tests", nil)
	}
	if g.Target <= 0 {
		return NewValidationError("target", "must be greater than zero", nil)
	}
	if g.Current < 0 {
		return NewValidationError("current", "cannot be negative", nil)
	}
	if !g.WindowEnd.After(g.WindowStart) {
		return NewValidationError("window_end", "must be after window_start", nil)
	}
	return nil
}

// WeekWindow returns the week [start, end) containing now, where weeks begin
// at 00:00 UTC on weekStart.
func WeekWindow(now time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	day := StudyDay(now)
	offset := (int(day.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}
