package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/store"
)

type masteryKey struct {
	userID uuid.UUID
	word   string
}

type goalKey struct {
	userID   uuid.UUID
	goalType domain.GoalType
}

// state is the complete data set. It is not safe for concurrent use; the
// Backend guards the live copy and transactions work on private clones.
type state struct {
	vocabulary map[string]string
	mastery    map[masteryKey]*domain.MasteryRecord
	streaks    map[uuid.UUID]*domain.StreakState
	sessions   []*domain.StudySession
	sessionIDs map[uuid.UUID]struct{}
	goals      map[goalKey]*domain.WeeklyGoal
}

func newState() *state {
	return &state{
		vocabulary: make(map[string]string),
		mastery:    make(map[masteryKey]*domain.MasteryRecord),
		streaks:    make(map[uuid.UUID]*domain.StreakState),
		sessionIDs: make(map[uuid.UUID]struct{}),
		goals:      make(map[goalKey]*domain.WeeklyGoal),
	}
}

// clone copies the maps. Stored values are never mutated in place, so
// sharing the pointers is safe.
func (s *state) clone() *state {
	c := &state{
		vocabulary: make(map[string]string, len(s.vocabulary)),
		mastery:    make(map[masteryKey]*domain.MasteryRecord, len(s.mastery)),
		streaks:    make(map[uuid.UUID]*domain.StreakState, len(s.streaks)),
		sessions:   append([]*domain.StudySession(nil), s.sessions...),
		sessionIDs: make(map[uuid.UUID]struct{}, len(s.sessionIDs)),
		goals:      make(map[goalKey]*domain.WeeklyGoal, len(s.goals)),
	}
	for k, v := range s.vocabulary {
		c.vocabulary[k] = v
	}
	for k, v := range s.mastery {
		c.mastery[k] = v
	}
	for k, v := range s.streaks {
		c.streaks[k] = v
	}
	for k, v := range s.sessionIDs {
		c.sessionIDs[k] = v
	}
	for k, v := range s.goals {
		c.goals[k] = v
	}
	return c
}

func (s *state) seed(entries []domain.Vocabulary) int {
	inserted := 0
	for _, entry := range entries {
		key := strings.ToLower(entry.Word)
		if _, ok := s.vocabulary[key]; ok {
			continue
		}
		s.vocabulary[key] = entry.Word
		inserted++
	}
	return inserted
}

func (s *state) getMastery(userID uuid.UUID, word string) (*domain.MasteryRecord, error) {
	record, ok := s.mastery[masteryKey{userID, word}]
	if !ok {
		return nil, store.ErrMasteryRecordNotFound
	}
	return record.Clone(), nil
}

func (s *state) writeMastery(record *domain.MasteryRecord, expectedVersion int64) (int64, error) {
	if err := record.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if expectedVersion < 0 {
		return 0, fmt.Errorf("%w: negative expected version", store.ErrInvalidEntity)
	}
	if canonical, ok := s.vocabulary[strings.ToLower(record.Word)]; !ok || canonical != record.Word {
		return 0, fmt.Errorf("%w: word %q is not in the vocabulary", store.ErrInvalidEntity, record.Word)
	}

	key := masteryKey{record.UserID, record.Word}
	var current int64
	if existing, ok := s.mastery[key]; ok {
		current = existing.Version
	}
	if current != expectedVersion {
		return 0, fmt.Errorf("%w: mastery record version is %d, expected %d",
			store.ErrConcurrencyConflict, current, expectedVersion)
	}

	stored := record.Clone()
	stored.Version = expectedVersion + 1
	s.mastery[key] = stored
	return stored.Version, nil
}

func (s *state) listDue(userID uuid.UUID, now time.Time, limit int) []*domain.MasteryRecord {
	due := make([]*domain.MasteryRecord, 0)
	for key, record := range s.mastery {
		if key.userID == userID && record.IsDue(now) {
			due = append(due, record.Clone())
		}
	}
	sort.Slice(due, func(i, j int) bool { return domain.LessDue(due[i], due[j]) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

func (s *state) listWords(userID uuid.UUID) []string {
	words := make([]string, 0)
	for key := range s.mastery {
		if key.userID == userID {
			words = append(words, key.word)
		}
	}
	sort.Strings(words)
	return words
}

func (s *state) summarizeMastery(userID uuid.UUID, now time.Time) *domain.MasterySummary {
	summary := &domain.MasterySummary{LevelCounts: make([]int, domain.MaxMasteryLevel+1)}
	var confidenceSum float64
	for key, record := range s.mastery {
		if key.userID != userID {
			continue
		}
		summary.WordsSeen++
		summary.LevelCounts[record.MasteryLevel]++
		summary.CorrectCount += record.CorrectCount
		summary.IncorrectCount += record.IncorrectCount
		confidenceSum += record.ConfidenceScore
		if record.IsDue(now) {
			summary.DueNow++
		}
	}
	summary.TotalAttempts = summary.CorrectCount + summary.IncorrectCount
	summary.MasteredWords = summary.LevelCounts[domain.MaxMasteryLevel]
	if summary.WordsSeen > 0 {
		summary.AverageConfidence = confidenceSum / float64(summary.WordsSeen)
	}
	return summary
}

func (s *state) getStreak(userID uuid.UUID) (*domain.StreakState, error) {
	streak, ok := s.streaks[userID]
	if !ok {
		return nil, store.ErrStreakNotFound
	}
	c := *streak
	return &c, nil
}

func (s *state) writeStreak(streak *domain.StreakState, expectedVersion int64) (int64, error) {
	if err := streak.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if expectedVersion < 0 {
		return 0, fmt.Errorf("%w: negative expected version", store.ErrInvalidEntity)
	}

	var current int64
	if existing, ok := s.streaks[streak.UserID]; ok {
		current = existing.Version
	}
	if current != expectedVersion {
		return 0, fmt.Errorf("%w: streak version is %d, expected %d",
			store.ErrConcurrencyConflict, current, expectedVersion)
	}

	stored := *streak
	stored.Version = expectedVersion + 1
	s.streaks[streak.UserID] = &stored
	return stored.Version, nil
}

func (s *state) appendSession(session *domain.StudySession) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if _, ok := s.sessionIDs[session.ID]; ok {
		return fmt.Errorf("%w: %s", store.ErrSessionExists, session.ID)
	}

	stored := *session
	stored.Outcomes = append([]domain.Outcome(nil), session.Outcomes...)
	s.sessions = append(s.sessions, &stored)
	s.sessionIDs[session.ID] = struct{}{}
	return nil
}

func (s *state) listRecentSessions(userID uuid.UUID, limit int) []*domain.StudySession {
	sessions := make([]*domain.StudySession, 0)
	for _, session := range s.sessions {
		if session.UserID == userID {
			c := *session
			c.Outcomes = append([]domain.Outcome(nil), session.Outcomes...)
			sessions = append(sessions, &c)
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].CompletedAt.Equal(sessions[j].CompletedAt) {
			return sessions[i].CompletedAt.After(sessions[j].CompletedAt)
		}
		return sessions[i].ID.String() < sessions[j].ID.String()
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions
}

func (s *state) summarizeSessions(userID uuid.UUID) *domain.SessionLogSummary {
	summary := &domain.SessionLogSummary{SessionsByType: make(map[domain.SessionType]int)}
	for _, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		summary.SessionCount++
		summary.SessionsByType[session.Type]++
		summary.TotalStudySeconds += int64(session.DurationSeconds)
		if summary.LastSessionAt == nil || session.CompletedAt.After(*summary.LastSessionAt) {
			at := session.CompletedAt.UTC()
			summary.LastSessionAt = &at
		}
	}
	return summary
}

func (s *state) getGoal(userID uuid.UUID, goalType domain.GoalType) (*domain.WeeklyGoal, error) {
	goal, ok := s.goals[goalKey{userID, goalType}]
	if !ok {
		return nil, store.ErrGoalNotFound
	}
	c := *goal
	return &c, nil
}

func (s *state) upsertGoal(goal *domain.WeeklyGoal) error {
	if err := goal.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	stored := *goal
	if existing, ok := s.goals[goalKey{goal.UserID, goal.Type}]; ok {
		stored.CreatedAt = existing.CreatedAt
		if existing.WindowStart.Equal(goal.WindowStart) {
			stored.Current = existing.Current
		}
	}
	s.goals[goalKey{goal.UserID, goal.Type}] = &stored
	return nil
}

func (s *state) listGoals(userID uuid.UUID) []*domain.WeeklyGoal {
	goals := make([]*domain.WeeklyGoal, 0)
	for key, goal := range s.goals {
		if key.userID == userID {
			c := *goal
			goals = append(goals, &c)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Type < goals[j].Type })
	return goals
}

func (s *state) addProgress(
	userID uuid.UUID,
	goalType domain.GoalType,
	amount int,
	now time.Time,
) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: progress amount must be positive", store.ErrInvalidEntity)
	}

	goal, ok := s.goals[goalKey{userID, goalType}]
	if !ok || !goal.Active(now) {
		return false, nil
	}

	updated := *goal
	updated.Current += amount
	updated.UpdatedAt = now
	s.goals[goalKey{userID, goalType}] = &updated
	return true, nil
}
