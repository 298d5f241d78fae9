package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	GroupID int64 `json:"group_id"`
}

func TestQueueDeliversTypedPayload(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []int64
	)
	done := make(chan struct{}, 2)
	q := NewQueue[payload]("test", func(ctx context.Context, job Job[payload]) error {
		mu.Lock()
		seen = append(seen, job.Payload.GroupID)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}, QueueConfig{Workers: 1, Logger: zap.NewNop()})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "a", Payload: payload{GroupID: 7}}))
	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "b", Payload: payload{GroupID: 8}}))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not handled")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{7, 8}, seen)
}

func TestQueueHandlesJobOnceEvenOnError(t *testing.T) {
	calls := make(chan string, 4)
	q := NewQueue[payload]("test", func(ctx context.Context, job Job[payload]) error {
		calls <- job.ID
		return errors.New("boom")
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "once"}))
	select {
	case id := <-calls:
		assert.Equal(t, "once", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job not handled")
	}
	select {
	case id := <-calls:
		t.Fatalf("job %s handled twice", id)
	case <-time.After(100 * time.Millisecond):
	}
	q.Stop()
}

func TestQueueRecoversFromPanic(t *testing.T) {
	handled := make(chan string, 2)
	q := NewQueue[payload]("test", func(ctx context.Context, job Job[payload]) error {
		if job.ID == "panic" {
			panic("bad job")
		}
		handled <- job.ID
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "panic"}))
	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "next"}))
	select {
	case id := <-handled:
		assert.Equal(t, "next", id)
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue[payload]("idle", func(context.Context, Job[payload]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(context.Background(), Job[payload]{ID: "x"}))
}

func TestQueueEnqueueAfterStop(t *testing.T) {
	q := NewQueue[payload]("stopped", func(context.Context, Job[payload]) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	q.Stop()
	assert.Error(t, q.Enqueue(context.Background(), Job[payload]{ID: "x"}))
}

func TestQueueEnqueueFailsFastWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue[payload]("full", func(ctx context.Context, job Job[payload]) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	// one job in the worker, one in the buffer, the third has nowhere to go
	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "1"}))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job[payload]{ID: "2"}))

	start := time.Now()
	err := q.Enqueue(context.Background(), Job[payload]{ID: "3"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
