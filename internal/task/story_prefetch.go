package task

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lexiloop/lexiloop-api/internal/generation"
	"github.com/lexiloop/lexiloop-api/internal/service/story"
)

// StoryPrefetchTask generates a story from a user's current due words so the
// next story request for the same words is served from the cache.
type StoryPrefetchTask struct {
	id      uuid.UUID
	userID  uuid.UUID
	stories story.Service
}

var _ Task = (*StoryPrefetchTask)(nil)

// NewStoryPrefetchTask creates a prefetch task for userID.
func NewStoryPrefetchTask(stories story.Service, userID uuid.UUID) *StoryPrefetchTask {
	return &StoryPrefetchTask{
		id:      uuid.New(),
		userID:  userID,
		stories: stories,
	}
}

func (t *StoryPrefetchTask) ID() uuid.UUID { return t.id }

func (t *StoryPrefetchTask) Kind() Kind { return KindStoryPrefetch }

// Execute generates and caches a story. A user with nothing due is not an
// error.
func (t *StoryPrefetchTask) Execute(ctx context.Context) error {
	_, err := t.stories.Generate(ctx, t.userID, generation.Request{})
	if errors.Is(err, story.ErrNoWords) {
		return nil
	}
	return err
}

// StoryPrefetcher queues story prefetch tasks. Prefetching is best effort:
// a full or closed queue drops the request.
type StoryPrefetcher struct {
	queue   Sink
	stories story.Service
	logger  *slog.Logger
}

// NewStoryPrefetcher creates a StoryPrefetcher writing to queue.
func NewStoryPrefetcher(queue Sink, stories story.Service, logger *slog.Logger) *StoryPrefetcher {
	if queue == nil {
		panic("queue cannot be nil")
	}
	if stories == nil {
		panic("stories cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryPrefetcher{
		queue:   queue,
		stories: stories,
		logger:  logger.With(slog.String("component", "story_prefetcher")),
	}
}

// Prefetch queues a prefetch for userID. It never blocks.
func (p *StoryPrefetcher) Prefetch(userID uuid.UUID) {
	if err := p.queue.Enqueue(NewStoryPrefetchTask(p.stories, userID)); err != nil {
		p.logger.Debug("story prefetch dropped",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}
