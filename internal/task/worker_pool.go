package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue Source

	workerCount int
	taskTimeout time.Duration

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is canceled by Stop; running tasks see the cancellation
	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once

	logger *slog.Logger

	// errorHandler is called when a task execution fails
	// If nil, errors are only logged
	errorHandler func(task Task, err error)
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// TaskTimeout bounds a single task execution. Zero means no limit.
	TaskTimeout time.Duration
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
		TaskTimeout: time.Minute,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue Source, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	if taskQueue == nil {
		panic("taskQueue cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		taskTimeout: config.TaskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a handler for task execution failures. It must be
// called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(task Task, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop cancels running tasks and waits for every worker to exit.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	tasks := p.taskQueue.Tasks()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-tasks:
			if !ok {
				p.logger.Debug("task channel closed, stopping worker", "worker_id", id)
				return
			}
			p.processTask(task, id)
		}
	}
}

// processTask runs one task, turning a panic into a task failure so a bad
// task cannot take the worker down.
func (p *WorkerPool) processTask(task Task, workerID int) {
	log := p.logger.With(
		"task_id", task.ID(),
		"task_kind", task.Kind(),
		"worker_id", workerID,
	)

	ctx := p.ctx
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	start := time.Now()
	err := runTask(ctx, task)
	if err != nil {
		log.Warn("task execution failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		if p.errorHandler != nil {
			p.errorHandler(task, err)
		}
		return
	}

	log.Debug("task completed", "duration_ms", time.Since(start).Milliseconds())
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task.Execute(ctx)
}
