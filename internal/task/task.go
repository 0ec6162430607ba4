// Package task runs best-effort background work on a bounded in-process
// queue. Tasks are not persisted: work that is queued when the process stops
// is dropped.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Kind names a family of tasks in logs.
type Kind string

// KindStoryPrefetch warms the story cache for a user's due words.
const KindStoryPrefetch Kind = "story_prefetch"

// Task is one unit of background work.
type Task interface {
	ID() uuid.UUID
	Kind() Kind
	// Execute runs the work. ctx is cancelled when the task times out or
	// the pool stops.
	Execute(ctx context.Context) error
}

// Source hands queued tasks to workers. The channel closes once the queue is
// closed and drained.
type Source interface {
	Tasks() <-chan Task
}

// Sink accepts tasks without blocking the caller.
type Sink interface {
	Enqueue(task Task) error
}
