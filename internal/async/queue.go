package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidmaina/contract-vault/internal/common"
)

// JobRunner is what the queue drives; the pipeline processor satisfies it.
type JobRunner interface {
	Process(ctx context.Context, jobID uuid.UUID) error
}

// Queue fans submitted job ids out to a fixed pool of workers. Enqueue never
// blocks: a full queue is reported to the caller instead.
type Queue struct {
	runner  JobRunner
	logger  *slog.Logger
	jobs    chan uuid.UUID
	wg      sync.WaitGroup
	workers int
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan uuid.UUID, n)
		}
	}
}

// WithProcessTimeout bounds each job's processing time. Zero disables the
// per-job deadline.
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.timeout = d
	}
}

func NewQueue(runner JobRunner, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		runner:  runner,
		logger:  logger,
		jobs:    make(chan uuid.UUID, 256),
		workers: 4,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker pool. Workers drain the queue until Shutdown
// closes it; ctx cancellation aborts in-flight jobs through their process
// context.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.logger.Info("queue.started", "workers", q.workers, "capacity", cap(q.jobs))
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for jobID := range q.jobs {
		q.run(ctx, id, jobID)
	}
}

func (q *Queue) run(ctx context.Context, workerID int, jobID uuid.UUID) {
	runCtx := ctx
	if q.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := q.runner.Process(runCtx, jobID); err != nil {
		q.logger.Error("queue.job_failed",
			"worker", workerID,
			"job_id", jobID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	q.logger.Debug("queue.job_done",
		"worker", workerID,
		"job_id", jobID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// Enqueue hands a job id to the pool. Returns an error if the queue is full
// or already shut down.
func (q *Queue) Enqueue(jobID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return common.NewAppError("QUEUE_CLOSED", "queue is shut down", common.ErrInvalidStatus)
	}
	select {
	case q.jobs <- jobID:
		return nil
	default:
		return common.NewAppError("QUEUE_FULL", "processing queue is full", common.ErrInternal)
	}
}

// Shutdown stops intake and waits for in-flight jobs to finish, up to the
// given grace period.
func (q *Queue) Shutdown(grace time.Duration) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.logger.Info("queue.drained")
	case <-time.After(grace):
		q.logger.Warn("queue.shutdown_timeout", "grace", grace.String())
	}
}
