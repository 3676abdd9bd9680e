package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/logger"
	"github.com/indraneel316/Financial-Decision-Helper-sub000/internal/uuid"
)

// Queue is an in-memory job queue sharded by user. Each shard has a single
// worker, which serializes the jobs of every user hashed onto it. A job
// whose identical twin is still waiting is dropped.
type Queue struct {
	shards    []chan Job
	closeChan chan struct{}
	wg        sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool

	pendingMu sync.Mutex
	pending   map[string]struct{}

	processed atomic.Int64
	failed    atomic.Int64
	coalesced atomic.Int64
}

// Stats are counters since the queue was created.
type Stats struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Coalesced int64 `json:"coalesced"`
	Pending   int   `json:"pending"`
}

// NewQueue creates a queue with workers shards, each buffering up to
// bufferSize jobs.
func NewQueue(workers, bufferSize int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	q := &Queue{
		shards:    make([]chan Job, workers),
		closeChan: make(chan struct{}),
		pending:   make(map[string]struct{}),
	}
	for i := range q.shards {
		q.shards[i] = make(chan Job, bufferSize)
	}
	return q
}

// Publish enqueues job without blocking. It returns ErrFull when the user's
// shard has no room and ErrClosed after Stop.
func (q *Queue) Publish(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if job.ID == "" {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	key := job.key()
	q.pendingMu.Lock()
	if _, dup := q.pending[key]; dup {
		q.pendingMu.Unlock()
		q.coalesced.Add(1)
		return nil
	}
	q.pending[key] = struct{}{}
	q.pendingMu.Unlock()

	select {
	case q.shardFor(job.UserID) <- job:
		return nil
	default:
		q.release(key)
		return ErrFull
	}
}

// Start launches one worker per shard. Workers exit when ctx is cancelled
// or Stop is called.
func (q *Queue) Start(ctx context.Context, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if q.started {
		return nil
	}
	q.started = true

	for _, shard := range q.shards {
		q.wg.Add(1)
		go q.worker(ctx, shard, handler)
	}
	return nil
}

// Stop rejects new jobs and waits for in-flight jobs to finish or ctx to
// expire. Jobs still buffered are discarded.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the queue counters.
func (q *Queue) Stats() Stats {
	q.pendingMu.Lock()
	pending := len(q.pending)
	q.pendingMu.Unlock()
	return Stats{
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Coalesced: q.coalesced.Load(),
		Pending:   pending,
	}
}

func (q *Queue) worker(ctx context.Context, jobs <-chan Job, handler Handler) {
	defer q.wg.Done()
	log := logger.Named("jobs")

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case job := <-jobs:
			q.release(job.key())
			start := time.Now()
			if err := q.run(ctx, job, handler); err != nil {
				q.failed.Add(1)
				log.Errorw("Job failed", "job_id", job.ID, "kind", job.Kind, "user_id", job.UserID, "error", err)
				continue
			}
			q.processed.Add(1)
			log.Debugw("Job completed", "job_id", job.ID, "kind", job.Kind, "user_id", job.UserID, "duration", time.Since(start))
		}
	}
}

// run shields the worker from a panicking handler.
func (q *Queue) run(ctx context.Context, job Job, handler Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return handler(ctx, job)
}

func (q *Queue) release(key string) {
	q.pendingMu.Lock()
	delete(q.pending, key)
	q.pendingMu.Unlock()
}

func (q *Queue) shardFor(userID string) chan Job {
	return q.shards[xxhash.Sum64String(userID)%uint64(len(q.shards))]
}

// PanicError wraps a value recovered from a handler.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job handler panicked: %v", e.Value)
}

var _ Publisher = (*Queue)(nil)
