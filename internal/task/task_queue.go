package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded in-memory queue. Producers never block: a full queue
// rejects the task and the caller decides whether to drop it.
type TaskQueue struct {
	mu     sync.RWMutex
	tasks  chan Task
	closed bool
	logger *slog.Logger
}

var (
	_ Source = (*TaskQueue)(nil)
	_ Sink   = (*TaskQueue)(nil)
)

// NewTaskQueue creates a queue holding up to capacity tasks. A capacity
// below one is raised to one.
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan Task, max(capacity, 1)),
		logger: logger.With(slog.String("component", "task_queue")),
	}
}

// Enqueue implements Sink. It returns ErrQueueFull or ErrQueueClosed instead
// of waiting.
func (q *TaskQueue) Enqueue(task Task) error {
	// The read lock keeps Close from closing the channel mid-send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_kind", string(task.Kind())),
			slog.Int("depth", len(q.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: capacity %d", ErrQueueFull, cap(q.tasks))
	}
}

// Tasks implements Source.
func (q *TaskQueue) Tasks() <-chan Task {
	return q.tasks
}

// Len reports how many tasks are waiting.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// Close stops accepting tasks. Queued tasks remain readable until drained.
// Calling Close more than once is a no-op.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
	q.logger.Info("task queue closed", slog.Int("pending", len(q.tasks)))
}
