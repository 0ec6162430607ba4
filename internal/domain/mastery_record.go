package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxMasteryLevel is the highest level a word can reach.
const MaxMasteryLevel = 5

// MasteryRecord tracks one user's progress on one vocabulary word.
//
// Invariants:
//   - TotalAttempts == CorrectCount + IncorrectCount
//   - 0 <= MasteryLevel <= MaxMasteryLevel
//   - 0 <= ConfidenceScore <= 1
//   - NextDueAt is never before LastReviewedAt
//
// Version is the optimistic concurrency token. Zero means the record has
// never been persisted.
type MasteryRecord struct {
	UserID          uuid.UUID `json:"user_id"`
	Word            string    `json:"word"`
	MasteryLevel    int       `json:"mastery_level"`
	CorrectCount    int       `json:"correct_count"`
	IncorrectCount  int       `json:"incorrect_count"`
	TotalAttempts   int       `json:"total_attempts"`
	ConfidenceScore float64   `json:"confidence_score"`
	FirstLearnedAt  time.Time `json:"first_learned_at"`
	LastReviewedAt  time.Time `json:"last_reviewed_at"`
	NextDueAt       time.Time `json:"next_due_at"`
	Version         int64     `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewMasteryRecord creates the level-0 record for a word on first exposure.
// It is due immediately and has not been reviewed yet.
func NewMasteryRecord(userID uuid.UUID, word string, now time.Time) (*MasteryRecord, error) {
	now = now.UTC()
	record := &MasteryRecord{
		UserID:    userID,
		Word:      word,
		NextDueAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks every invariant of the record.
func (r *MasteryRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return NewValidationError("user_id", "cannot be empty", ErrInvalidID)
	}
	if strings.TrimSpace(r.Word) == "" {
		return NewValidationError("word", "cannot be empty", nil)
	}
	if r.MasteryLevel < 0 || r.MasteryLevel > MaxMasteryLevel {
		return NewValidationError("mastery_level", "must be between 0 and 5", nil)
	}
	if r.CorrectCount < 0 || r.IncorrectCount < 0 {
		return NewValidationError("attempts", "counts cannot be negative", nil)
	}
	if r.TotalAttempts != r.CorrectCount+r.IncorrectCount {
		return NewValidationError("total_attempts", "must equal correct plus incorrect count", nil)
	}
	if math.IsNaN(r.ConfidenceScore) || r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		return NewValidationError("confidence_score", "must be between 0 and 1", nil)
	}
	if r.NextDueAt.Before(r.LastReviewedAt) {
		return NewValidationError("next_due_at", "cannot be before last_reviewed_at", nil)
	}
	if r.Version < 0 {
		return NewValidationError("version", "cannot be negative", nil)
	}
	return nil
}

// IsDue reports whether the record should be reviewed at now.
func (r *MasteryRecord) IsDue(now time.Time) bool {
	return !r.NextDueAt.After(now)
}

// Clone returns an independent copy of the record.
func (r *MasteryRecord) Clone() *MasteryRecord {
	c := *r
	return &c
}

// LessDue orders records for a review queue: earliest due first, then the
// lowest confidence, then the word.
func LessDue(a, b *MasteryRecord) bool {
	if !a.NextDueAt.Equal(b.NextDueAt) {
		return a.NextDueAt.Before(b.NextDueAt)
	}
	if a.ConfidenceScore != b.ConfidenceScore {
		return a.ConfidenceScore < b.ConfidenceScore
	}
	return a.Word < b.Word
}

// DueItem is one entry of a review queue. Record is nil for catalog words the
// user has never reviewed (IsNew).
type DueItem struct {
	Vocabulary Vocabulary     `json:"vocabulary"`
	Record     *MasteryRecord `json:"record,omitempty"`
	IsNew      bool           `json:"is_new"`
}
