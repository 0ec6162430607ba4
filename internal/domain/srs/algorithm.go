package srs

import (
	"time"

	"github.com/lexiloop/lexiloop-api/internal/domain"
)

// calculateNewLevel moves the mastery level one step per review outcome.
//
// Parameters:
//   - level: The current mastery level (0-5)
//   - correct: Whether the word was answered correctly
//
// Returns:
//   - The new level, clamped to [0, domain.MaxMasteryLevel]
//
// A correct answer can never lower the level and a wrong answer can never
// raise it.
func calculateNewLevel(level int, correct bool) int {
	if correct {
		level++
	} else {
		level--
	}

	if level < 0 {
		return 0
	}
	if level > domain.MaxMasteryLevel {
		return domain.MaxMasteryLevel
	}
	return level
}

// calculateNewConfidence applies an exponential moving average toward 1.0 for
// a correct answer and toward 0.0 for a wrong one.
func calculateNewConfidence(confidence float64, correct bool, params *Params) float64 {
	target := 0.0
	if correct {
		target = 1.0
	}

	next := confidence*params.ConfidenceDecay + (1-params.ConfidenceDecay)*target

	if next < 0 {
		return 0
	}
	if next > 1 {
		return 1
	}
	return next
}

// calculateNextDueAt determines when the word should next be reviewed.
//
// Parameters:
//   - reviewedAt: When the review happened
//   - newLevel: The level after applying the outcome
//   - correct: Whether the word was answered correctly
//   - params: Configuration parameters for the policy
//
// Algorithm behavior:
//   - Correct answers wait the base interval of the new level
//   - Wrong answers always come back after params.IncorrectReviewDays so the
//     word is re-exposed soon regardless of its level
func calculateNextDueAt(reviewedAt time.Time, newLevel int, correct bool, params *Params) time.Time {
	if !correct {
		return reviewedAt.AddDate(0, 0, params.IncorrectReviewDays)
	}
	return reviewedAt.AddDate(0, 0, params.BaseIntervalDays[newLevel])
}

// calculateNextRecord returns a new record reflecting one review outcome.
// The input record is not modified.
func calculateNextRecord(
	record *domain.MasteryRecord,
	correct bool,
	reviewedAt time.Time,
	params *Params,
) *domain.MasteryRecord {
	next := record.Clone()
	reviewedAt = reviewedAt.UTC()

	if correct {
		next.CorrectCount++
	} else {
		next.IncorrectCount++
	}
	next.TotalAttempts = next.CorrectCount + next.IncorrectCount

	if next.FirstLearnedAt.IsZero() {
		next.FirstLearnedAt = reviewedAt
	}
	next.LastReviewedAt = reviewedAt

	next.MasteryLevel = calculateNewLevel(record.MasteryLevel, correct)
	next.ConfidenceScore = calculateNewConfidence(record.ConfidenceScore, correct, params)
	next.NextDueAt = calculateNextDueAt(reviewedAt, next.MasteryLevel, correct, params)
	next.UpdatedAt = reviewedAt

	return next
}
