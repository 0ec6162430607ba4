// Package story serves vocabulary stories for a user. Requests without
// words are filled from the user's review queue, results are cached, and
// generated text is sanitized before it leaves the service.
package story

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/domain"
	"github.com/lexiloop/lexiloop-api/internal/generation"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"github.com/lexiloop/lexiloop-api/internal/service"
	"github.com/microcosm-cc/bluemonday"
)

// QueueWords is how many due words fill a request that names none.
const QueueWords = 10

// ErrNoWords is returned when a request names no words and the user's
// review queue is empty.
var ErrNoWords = fmt.Errorf("%w: no vocabulary words available for a story", generation.ErrInvalidRequest)

// DueQueue supplies the user's next words to review.
type DueQueue interface {
	GetDueQueue(ctx context.Context, userID uuid.UUID, limit int) ([]domain.DueItem, error)
}

// Service generates stories for users.
type Service interface {
	// Generate returns a story using req's words, or the user's due words
	// when req names none.
	//
	// Returns:
	//   - The sanitized story
	//   - An error wrapping generation.ErrInvalidRequest for bad requests,
	//     generation.ErrLowQuality or generation.ErrGenerationFailed when no
	//     generator produced an acceptable story
	Generate(ctx context.Context, userID uuid.UUID, req generation.Request) (*generation.Story, error)
}

type serviceImpl struct {
	generator generation.Generator
	queue     DueQueue
	cache     *generation.Cache
	policy    *bluemonday.Policy
	logger    *slog.Logger
}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// NewService creates a story Service. A nil cache disables caching.
func NewService(
	generator generation.Generator,
	queue DueQueue,
	cache *generation.Cache,
	logger *slog.Logger,
) Service {
	if generator == nil {
		panic("generator cannot be nil")
	}
	if queue == nil {
		panic("queue cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		generator: generator,
		queue:     queue,
		cache:     cache,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger.With(slog.String("component", "story_service")),
	}
}

// Generate implements Service.Generate
func (s *serviceImpl) Generate(
	ctx context.Context,
	userID uuid.UUID,
	req generation.Request,
) (*generation.Story, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	req = req.WithDefaults()
	if len(req.Words) == 0 {
		words, err := s.dueWords(ctx, userID)
		if err != nil {
			return nil, service.NewServiceError("generate_story", "failed to load due words", err)
		}
		if len(words) == 0 {
			return nil, ErrNoWords
		}
		req.Words = words
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := generation.CacheKey(req)
	if cached, ok := s.cache.Get(key); ok {
		log.Debug("story served from cache", slog.String("cache_key", key))
		return cached, nil
	}

	story, err := s.generator.GenerateStory(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		log.Error("story generation failed",
			slog.String("user_id", userID.String()),
			slog.Int("word_count", len(req.Words)),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.sanitize(story, req)
	story.CacheKey = key
	s.cache.Put(key, story)

	log.Info("story generated",
		slog.String("user_id", userID.String()),
		slog.String("source", story.Source),
		slog.Int("vocabulary_used", len(story.VocabularyUsed)),
		slog.Float64("quality_score", story.QualityScore))

	return story, nil
}

func (s *serviceImpl) dueWords(ctx context.Context, userID uuid.UUID) ([]string, error) {
	items, err := s.queue.GetDueQueue(ctx, userID, QueueWords)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(items))
	for _, item := range items {
		words = append(words, item.Vocabulary.Word)
	}
	return words, nil
}

// sanitize strips markup from the generated text and recomputes the fields
// derived from it.
func (s *serviceImpl) sanitize(story *generation.Story, req generation.Request) {
	clean := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(story.Content)))
	if clean == story.Content {
		return
	}
	story.Content = clean
	story.VocabularyUsed = generation.WordsUsed(clean, req.Words)
	story.WordCount = len(strings.Fields(clean))
}
