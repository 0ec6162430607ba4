package domain

import (
	"time"

	"github.com/google/uuid"
)

// MasterySummary aggregates a user's mastery records.
type MasterySummary struct {
	WordsSeen         int     `json:"words_seen"`
	LevelCounts       []int   `json:"level_counts"`
	MasteredWords     int     `json:"mastered_words"`
	DueNow            int     `json:"due_now"`
	TotalAttempts     int     `json:"total_attempts"`
	CorrectCount      int     `json:"correct_count"`
	IncorrectCount    int     `json:"incorrect_count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Accuracy returns the share of correct attempts, or 0 without attempts.
func (s MasterySummary) Accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalAttempts)
}

// SessionLogSummary aggregates a user's study session log.
type SessionLogSummary struct {
	SessionCount      int                 `json:"session_count"`
	SessionsByType    map[SessionType]int `json:"sessions_by_type"`
	TotalStudySeconds int64               `json:"total_study_seconds"`
	LastSessionAt     *time.Time          `json:"last_session_at,omitempty"`
}

// ProgressStats is the read model served by the progress stats endpoint.
type ProgressStats struct {
	UserID      uuid.UUID         `json:"user_id"`
	Mastery     MasterySummary    `json:"mastery"`
	Accuracy    float64           `json:"accuracy"`
	Streak      StreakState       `json:"streak"`
	Sessions    SessionLogSummary `json:"sessions"`
	GeneratedAt time.Time         `json:"generated_at"`
}
