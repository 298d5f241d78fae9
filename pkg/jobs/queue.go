package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrQueueFull is returned by Enqueue when no buffer slot is free.
var ErrQueueFull = errors.New("queue is full")

// Job represents a queued background task carrying a typed payload.
type Job[T any] struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Payload  T         `json:"payload"`
	Enqueued time.Time `json:"enqueued"`
}

// Handler processes a job. Every job is handled at most once by a queue; a
// returned error is logged and the job is dropped.
type Handler[T any] func(context.Context, Job[T]) error

// Dispatcher hands jobs from request handlers to workers.
type Dispatcher[T any] interface {
	Enqueue(ctx context.Context, job Job[T]) error
}

// Runner is a dispatcher whose workers can be started and stopped.
type Runner[T any] interface {
	Dispatcher[T]
	Start(ctx context.Context)
	Stop()
}

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

func (cfg QueueConfig) withDefaults() QueueConfig {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers int
	logger  *zap.Logger

	jobs    chan Job[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewQueue builds a new queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	cfg = cfg.withDefaults()
	return &Queue[T]{
		name:    name,
		handler: handler,
		workers: cfg.Workers,
		logger:  cfg.Logger,
		jobs:    make(chan Job[T], cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers, "driver", "memory")
}

// Stop cancels workers and waits for them to exit. Jobs still buffered are dropped.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name, "dropped", len(q.jobs))
}

// Enqueue pushes a job onto the queue without waiting: a full buffer is
// ErrQueueFull.
func (q *Queue[T]) Enqueue(ctx context.Context, job Job[T]) error {
	q.mu.Lock()
	qctx := q.ctx
	started := q.started
	q.mu.Unlock()

	if !started {
		return fmt.Errorf("queue %s not started", q.name)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	select {
	case <-qctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, qctx.Err())
	case <-ctx.Done():
		return fmt.Errorf("enqueue %s: %w", q.name, ctx.Err())
	case q.jobs <- job:
		return nil
	default:
		return fmt.Errorf("enqueue %s: %w", q.name, ErrQueueFull)
	}
}

func (q *Queue[T]) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			runHandler(q.ctx, q.logger, q.name, workerID, q.handler, job)
		}
	}
}

func runHandler[T any](ctx context.Context, logger *zap.Logger, queue string, workerID int, handler Handler[T], job Job[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Sugar().Errorw("job panicked", "queue", queue, "worker", workerID, "job_id", job.ID, "type", job.Type, "panic", r)
		}
	}()
	if err := handler(ctx, job); err != nil {
		logger.Sugar().Errorw("job failed", "queue", queue, "worker", workerID, "job_id", job.ID, "type", job.Type, "error", err)
	}
}
