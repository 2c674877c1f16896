package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan Job, 1)
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		done <- job
		return nil
	}, QueueConfig{Workers: 2})

	require.Error(t, q.Enqueue(Job{ID: "early"}))

	q.Start(context.Background())
	defer q.Stop()
	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "backup"}))

	select {
	case job := <-done:
		assert.Equal(t, "1", job.ID)
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRestartAfterStop(t *testing.T) {
	done := make(chan string, 2)
	q := NewQueue("restart", func(ctx context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})

	for _, id := range []string{"first", "second"} {
		q.Start(context.Background())
		require.NoError(t, q.Enqueue(Job{ID: id}))
		select {
		case got := <-done:
			assert.Equal(t, id, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("job %s not processed", id)
		}
		q.Stop()
	}
	require.Error(t, q.Enqueue(Job{ID: "late"}))
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	done := make(chan struct{})
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("temporary")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()
	require.NoError(t, q.Enqueue(Job{ID: "r"}))

	select {
	case <-done:
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	case <-time.After(2 * time.Second):
		t.Fatal("job not retried")
	}
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	q := NewQueue("cron", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	s := NewScheduler(q, nil)
	require.Error(t, s.Every("not a schedule", "backup"))
	require.NoError(t, s.Every("@daily", "backup"))
	s.Start()
	s.Stop()
}
