package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/generation"
)

// OutcomeRequest is one answered word inside a study session.
type OutcomeRequest struct {
	Word    string `json:"word"    validate:"required,max=100"`
	Correct bool   `json:"correct"`
}

// StudySessionRequest defines the payload for POST /sessions.
type StudySessionRequest struct {
	// ID is optional; clients that retry a submission send the same ID so the
	// session is only recorded once.
	ID              uuid.UUID        `json:"id"`
	Type            string           `json:"type"             validate:"required,oneof=reading test review"`
	DurationSeconds int              `json:"duration_seconds" validate:"gt=0,lte=86400"`
	Outcomes        []OutcomeRequest `json:"outcomes"         validate:"max=500,dive"`
	CompletedAt     *time.Time       `json:"completed_at"`
}

// toDomain converts the request into a study session.
func (r StudySessionRequest) toDomain() domain.StudySession {
	session := domain.StudySession{
		ID:              r.ID,
		Type:            domain.SessionType(r.Type),
		DurationSeconds: r.DurationSeconds,
		Outcomes:        make([]domain.Outcome, len(r.Outcomes)),
	}
	for i, o := range r.Outcomes {
		session.Outcomes[i] = domain.Outcome{Word: o.Word, Correct: o.Correct}
	}
	if r.CompletedAt != nil {
		session.CompletedAt = *r.CompletedAt
	}
	return session
}

// ReviewQueueResponse is returned by GET /review-queue.
type ReviewQueueResponse struct {
	Items []domain.DueItem `json:"items"`
	Count int              `json:"count"`
}

// SetGoalRequest defines the payload for POST /progress/goals/weekly.
type SetGoalRequest struct {
	Type   string `json:"type"   validate:"required,oneof=stories tests time words"`
	Target int    `json:"target" validate:"required,gt=0"`
}

// GoalsResponse is returned by GET /progress/goals/weekly.
type GoalsResponse struct {
	Goals []GoalResponse `json:"goals"`
}

// GoalResponse describes one weekly goal and its state.
type GoalResponse struct {
	Type        domain.GoalType `json:"type"`
	Target      int             `json:"target"`
	Current     int             `json:"current"`
	WindowStart time.Time       `json:"window_start"`
	WindowEnd   time.Time       `json:"window_end"`
	Active      bool            `json:"active"`
	Completed   bool            `json:"completed"`
}

// VocabularyListResponse is returned by GET /vocabulary.
type VocabularyListResponse struct {
	Words []domain.Vocabulary `json:"words"`
	Count int                 `json:"count"`
}

// VocabularyDetailResponse is returned by GET /vocabulary/{word}. Mastery is
// omitted when the user has not studied the word.
type VocabularyDetailResponse struct {
	Vocabulary domain.Vocabulary     `json:"vocabulary"`
	Mastery    *domain.MasteryRecord `json:"mastery,omitempty"`
}

// StoryRequest defines the payload for POST /stories. Every field is
// optional; words default to the user's due words.
type StoryRequest struct {
	Words      []string `json:"words"      validate:"max=20,dive,required,max=100"`
	Difficulty int      `json:"difficulty" validate:"omitempty,gte=1,lte=5"`
	StoryType  string   `json:"story_type" validate:"omitempty,oneof=general adventure daily_life science history"`
	MaxLength  int      `json:"max_length" validate:"omitempty,gte=100,lte=1500"`
}

func (r StoryRequest) toGeneration() generation.Request {
	return generation.Request{
		Words:      r.Words,
		Difficulty: r.Difficulty,
		StoryType:  generation.StoryType(r.StoryType),
		MaxLength:  r.MaxLength,
	}
}
