package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
)

// Errors returned by Pool.Submit.
var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrPoolStopped = errors.New("pool is stopped")
)

// PoolConfig holds configuration for the shared execution pool.
type PoolConfig struct {
	// WorkerCount determines how many tasks execute concurrently.
	// If zero or negative, defaults to the host's available concurrency.
	WorkerCount int

	// QueueSize bounds how many submitted tasks may wait for a free
	// worker. Submissions beyond the bound fail with ErrQueueFull.
	QueueSize int
}

// DefaultPoolConfig returns a PoolConfig sized to the host.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: runtime.NumCPU(),
		QueueSize:   64,
	}
}

// Pool is the process-wide execution pool shared by all callers. It
// bounds concurrency across views, admits queued tasks in FIFO order,
// and never blocks a submitter. A single engine failure never affects
// other in-flight or future tasks sharing the pool.
type Pool struct {
	queue       chan *worker
	workerCount int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	logger      *slog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewPool creates a pool with the given configuration. Invalid values
// fall back to defaults.
func NewPool(cfg PoolConfig, logger *slog.Logger) *Pool {
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
		logger.Warn("invalid worker count specified, using host concurrency",
			"specified_count", cfg.WorkerCount,
			"default_count", workerCount)
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultPoolConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		queue:       make(chan *worker, queueSize),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.With("component", "pool"),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	p.logger.Debug("pool started", "worker_count", p.workerCount, "queue_size", cap(p.queue))
}

// Stop shuts the pool down: no further submissions are accepted, the
// run context is cancelled so in-flight tasks can wind down, and work
// still queued is abandoned with a Cancelled terminal event so the
// exactly-once delivery property holds across shutdown.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	for {
		select {
		case w := <-p.queue:
			w.abandon()
		default:
			p.logger.Info("pool stopped")
			return
		}
	}
}

// Submit enqueues a task for execution and returns its cancellation
// token and single-consumer event stream. It never blocks: when the
// queue bound is hit it fails with ErrQueueFull, and after Stop with
// ErrPoolStopped. The stream yields zero or more progress events
// followed by exactly one terminal event, then closes; the consumer
// must drain it until close.
func (p *Pool) Submit(t Task) (*Token, <-chan Event, error) {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return nil, nil, ErrPoolStopped
	}

	token := NewToken()
	w := newWorker(t, token, p.logger)

	select {
	case p.queue <- w:
		p.logger.Debug("task enqueued",
			"task_id", t.ID(),
			"task_kind", t.Kind(),
			"queue_len", len(p.queue),
			"queue_cap", cap(p.queue))
		return token, w.events, nil
	default:
		return nil, nil, fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(p.queue))
	}
}

// runWorker consumes queued tasks until the pool shuts down.
func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return
		case w := <-p.queue:
			w.run(p.ctx)
		}
	}
}
