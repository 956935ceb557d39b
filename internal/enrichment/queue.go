// Package enrichment resolves launchpad buys by fetching their transactions
// through a bounded, rate-limited task queue.
package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"solana-launch-monitor/internal/domain"
	"solana-launch-monitor/internal/observability"
	"solana-launch-monitor/internal/solana"
)

// Default queue settings.
const (
	DefaultCapacity     = 50
	DefaultTrimTo       = 30
	DefaultSpacing      = 150 * time.Millisecond
	DefaultMaxRetries   = 3
	DefaultBackoffBase  = 1000 * time.Millisecond
	DefaultBackoffMax   = 5000 * time.Millisecond
	DefaultResultBuffer = 64
)

// Failure reasons reported to metrics.
const (
	reasonRateLimited = "rate_limited"
	reasonFetch       = "fetch_error"
	reasonNotFound    = "not_found"
	reasonTxFailed    = "tx_failed"
	reasonUnresolved  = "unresolved"
)

// Task is one pending transaction fetch.
type Task struct {
	Signature  string
	EnqueuedAt time.Time
	Retries    int
}

// Result is a resolved launchpad buy.
type Result struct {
	Buy       domain.LaunchpadBuy
	Slot      int64
	BlockTime int64 // unix seconds, 0 if unknown
}

// Options configures a Queue.
type Options struct {
	Capacity     int           // Default: 50
	TrimTo       int           // Default: 30; pending size after an overflow eviction
	Spacing      time.Duration // Default: 150ms between fetch attempts
	MaxRetries   int           // Default: 3 rate limited retries per task; negative disables retries
	BackoffBase  time.Duration // Default: 1s, doubled per retry
	BackoffMax   time.Duration // Default: 5s
	ResultBuffer int           // Default: 64
	Resolver     *Resolver
	Logger       *zap.Logger
}

// Queue fetches enqueued signatures one at a time and publishes resolved buys
// on Results.
type Queue struct {
	rpc    solana.RPCClient
	opts   Options
	logger *zap.Logger

	mu      sync.Mutex
	pending []Task
	known   map[string]struct{} // pending and in flight

	wake    chan struct{}
	results chan Result

	failures  atomic.Int64
	completed atomic.Int64

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewQueue creates a queue that fetches through rpc.
func NewQueue(rpc solana.RPCClient, opts Options) *Queue {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.TrimTo <= 0 || opts.TrimTo >= opts.Capacity {
		opts.TrimTo = opts.Capacity * DefaultTrimTo / DefaultCapacity
	}
	if opts.Spacing <= 0 {
		opts.Spacing = DefaultSpacing
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}
	if opts.BackoffMax <= 0 {
		opts.BackoffMax = DefaultBackoffMax
	}
	if opts.ResultBuffer <= 0 {
		opts.ResultBuffer = DefaultResultBuffer
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Queue{
		rpc:     rpc,
		opts:    opts,
		logger:  logger.Named("enrichment"),
		known:   make(map[string]struct{}),
		wake:    make(chan struct{}, 1),
		results: make(chan Result, opts.ResultBuffer),
	}
}

// Enqueue admits sig unless it is already pending or in flight. When the
// pending list is full the oldest tasks are evicted down to TrimTo first.
// Safe to call before Start.
func (q *Queue) Enqueue(sig string) bool {
	q.mu.Lock()
	if _, ok := q.known[sig]; ok {
		q.mu.Unlock()
		return false
	}

	if len(q.pending) >= q.opts.Capacity {
		drop := len(q.pending) - q.opts.TrimTo
		for _, t := range q.pending[:drop] {
			delete(q.known, t.Signature)
		}
		q.pending = append(q.pending[:0:0], q.pending[drop:]...)
		observability.RecordEnrichmentEvictions(drop)
		q.logger.Warn("queue overflow, evicted oldest tasks", zap.Int("evicted", drop))
	}

	q.pending = append(q.pending, Task{Signature: sig, EnqueuedAt: time.Now()})
	q.known[sig] = struct{}{}
	observability.UpdateEnrichmentPending(len(q.pending))
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Start launches the worker. It stops when ctx is done or Stop is called.
func (q *Queue) Start(ctx context.Context) {
	q.runMu.Lock()
	defer q.runMu.Unlock()
	if q.started {
		return
	}
	q.started = true

	ctx, q.cancel = context.WithCancel(ctx)
	q.done = make(chan struct{})
	go q.run(ctx)
}

// Stop halts the worker and waits for it to exit. Pending tasks are abandoned.
func (q *Queue) Stop() {
	q.runMu.Lock()
	cancel, done := q.cancel, q.done
	q.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Results returns resolved buys. It is closed when the worker exits.
func (q *Queue) Results() <-chan Result {
	return q.results
}

// Pending returns the number of queued tasks, excluding the one in flight.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// PendingSignatures returns the queued signatures, oldest first.
func (q *Queue) PendingSignatures() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.pending))
	for i, t := range q.pending {
		out[i] = t.Signature
	}
	return out
}

// Failures returns the number of abandoned tasks.
func (q *Queue) Failures() int64 {
	return q.failures.Load()
}

// Completed returns the number of resolved tasks.
func (q *Queue) Completed() int64 {
	return q.completed.Load()
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	defer close(q.results)

	var lastFetch time.Time
	for {
		task, ok := q.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
				continue
			}
		}
		if !q.process(ctx, task, &lastFetch) {
			return
		}
	}
}

// next pops the oldest pending task; it stays known until processed.
func (q *Queue) next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Task{}, false
	}
	t := q.pending[0]
	q.pending = q.pending[1:]
	observability.UpdateEnrichmentPending(len(q.pending))
	return t, true
}

func (q *Queue) forget(sig string) {
	q.mu.Lock()
	delete(q.known, sig)
	q.mu.Unlock()
}

// process fetches and resolves task, retrying rate limits. Returns false when
// ctx is done.
func (q *Queue) process(ctx context.Context, task Task, lastFetch *time.Time) bool {
	defer q.forget(task.Signature)
	log := q.logger.With(zap.String("signature", task.Signature))

	for {
		if wait := q.opts.Spacing - time.Since(*lastFetch); wait > 0 {
			if !sleep(ctx, wait) {
				return false
			}
		}
		*lastFetch = time.Now()
		observability.RecordEnrichmentRequest()

		tx, err := q.rpc.GetTransaction(ctx, task.Signature)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			if errors.Is(err, solana.ErrRateLimited) {
				if task.Retries >= q.opts.MaxRetries {
					q.fail(log, reasonRateLimited, err)
					return true
				}
				delay := q.backoff(task.Retries)
				task.Retries++
				observability.RecordEnrichmentRetry()
				log.Debug("rate limited, retrying",
					zap.Int("retry", task.Retries), zap.Duration("delay", delay))
				if !sleep(ctx, delay) {
					return false
				}
				continue
			}
			q.fail(log, reasonFetch, err)
			return true
		}

		switch {
		case tx == nil:
			q.fail(log, reasonNotFound, nil)
			return true
		case tx.Meta != nil && tx.Meta.Err != nil:
			q.fail(log, reasonTxFailed, nil)
			return true
		}

		buy, err := q.opts.Resolver.Resolve(tx)
		if err != nil {
			q.fail(log, reasonUnresolved, err)
			return true
		}

		q.completed.Add(1)
		res := Result{Buy: *buy, Slot: tx.Slot, BlockTime: tx.BlockTime}
		select {
		case q.results <- res:
		case <-ctx.Done():
			return false
		}
		log.Debug("resolved launchpad buy",
			zap.String("mint", buy.Mint), zap.Bool("pool_verified", buy.PoolVerified))
		return true
	}
}

func (q *Queue) fail(log *zap.Logger, reason string, err error) {
	q.failures.Add(1)
	observability.RecordEnrichmentFailure(reason)
	log.Warn("enrichment abandoned", zap.String("reason", reason), zap.Error(err))
}

// backoff returns min(base * 2^retry, max).
func (q *Queue) backoff(retry int) time.Duration {
	if retry >= 32 {
		return q.opts.BackoffMax
	}
	d := q.opts.BackoffBase << uint(retry)
	if d <= 0 || d > q.opts.BackoffMax {
		return q.opts.BackoffMax
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
