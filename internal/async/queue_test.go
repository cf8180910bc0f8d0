package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type countingRunner struct {
	mu   sync.Mutex
	seen map[uuid.UUID]int
	slow time.Duration
}

func (r *countingRunner) Process(ctx context.Context, jobID uuid.UUID) error {
	if r.slow > 0 {
		select {
		case <-time.After(r.slow):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = make(map[uuid.UUID]int)
	}
	r.seen[jobID]++
	return nil
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestQueueProcessesAllJobs(t *testing.T) {
	runner := &countingRunner{}
	q := NewQueue(runner, nil, WithWorkers(3), WithQueueSize(32))
	q.Start(context.Background())

	for i := 0; i < 20; i++ {
		if err := q.Enqueue(uuid.New()); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	q.Shutdown(5 * time.Second)

	if got := runner.count(); got != 20 {
		t.Errorf("processed = %d, want 20", got)
	}
}

func TestQueueFullReported(t *testing.T) {
	runner := &countingRunner{slow: time.Second}
	q := NewQueue(runner, nil, WithWorkers(1), WithQueueSize(1))
	// Not started: nothing drains the channel.
	if err := q.Enqueue(uuid.New()); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if err := q.Enqueue(uuid.New()); err == nil {
		t.Error("expected an error when the queue is full")
	}
}

func TestQueueEnqueueAfterShutdown(t *testing.T) {
	q := NewQueue(&countingRunner{}, nil, WithWorkers(1))
	q.Start(context.Background())
	q.Shutdown(time.Second)

	if err := q.Enqueue(uuid.New()); err == nil {
		t.Error("expected an error after shutdown")
	}
	// Second shutdown is a no-op, not a panic.
	q.Shutdown(time.Second)
}

func TestQueueProcessTimeout(t *testing.T) {
	runner := &countingRunner{slow: 500 * time.Millisecond}
	q := NewQueue(runner, nil, WithWorkers(1), WithProcessTimeout(10*time.Millisecond))
	q.Start(context.Background())

	if err := q.Enqueue(uuid.New()); err != nil {
		t.Fatal(err)
	}
	q.Shutdown(2 * time.Second)

	if got := runner.count(); got != 0 {
		t.Errorf("processed = %d, want 0 because the job timed out", got)
	}
}
