package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisPopTimeout   = 2 * time.Second
	redisErrorBackoff = time.Second
)

// ListClient is the subset of the Redis client the queue needs.
type ListClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisQueue dispatches jobs through a Redis list (LPUSH / BRPOP). Jobs survive
// a restart of the process that enqueued them.
type RedisQueue[T any] struct {
	name    string
	key     string
	client  ListClient
	handler Handler[T]

	workers int
	logger  *zap.Logger
	backoff time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewRedisQueue builds a Redis-backed queue stored under key.
func NewRedisQueue[T any](name, key string, client ListClient, handler Handler[T], cfg QueueConfig) *RedisQueue[T] {
	cfg = cfg.withDefaults()
	if key == "" {
		key = "queue:" + name
	}
	return &RedisQueue[T]{
		name:    name,
		key:     key,
		client:  client,
		handler: handler,
		workers: cfg.Workers,
		logger:  cfg.Logger,
		backoff: redisErrorBackoff,
	}
}

// Enqueue serialises the job and pushes it to the list head.
func (q *RedisQueue[T]) Enqueue(ctx context.Context, job Job[T]) error {
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	raw, err := encodeJob(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", q.name, err)
	}
	return nil
}

// Start launches the BRPOP consumers. Safe to call once.
func (q *RedisQueue[T]) Start(ctx context.Context) {
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
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers, "driver", "redis", "key", q.key)
}

// Stop cancels consumers and waits for in-flight jobs to finish.
func (q *RedisQueue[T]) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

func (q *RedisQueue[T]) worker(workerID int) {
	defer q.wg.Done()
	for {
		if q.ctx.Err() != nil {
			return
		}
		res, err := q.client.BRPop(q.ctx, redisPopTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if q.ctx.Err() != nil {
				return
			}
			q.logger.Sugar().Warnw("queue pop failed", "queue", q.name, "worker", workerID, "error", err)
			sleepCtx(q.ctx, q.backoff)
			continue
		}
		// BRPOP replies with [key, value].
		if len(res) != 2 {
			continue
		}
		job, err := decodeJob[T](res[1])
		if err != nil {
			q.logger.Sugar().Errorw("dropping undecodable job", "queue", q.name, "error", err)
			continue
		}
		runHandler(q.ctx, q.logger, q.name, workerID, q.handler, job)
	}
}

func encodeJob[T any](job Job[T]) (string, error) {
	raw, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	return string(raw), nil
}

func decodeJob[T any](raw string) (Job[T], error) {
	var job Job[T]
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return job, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
