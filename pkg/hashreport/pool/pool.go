// Package pool provides an adaptive bounded worker pool. It processes a
// batch of items concurrently, tolerates per-item failure without
// aborting the batch, and lets an external resource monitor raise or
// lower its concurrency one worker at a time.
package pool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/madebyjake/hashreport/pkg/hashreport/logging"
)

// Options configures a Pool.
type Options struct {
	// Initial is the worker count at startup, clamped to [Min, Max].
	// Values below 1 use the number of CPUs.
	Initial int

	// Min is the adaptive floor. Values below 1 use 1.
	Min int

	// Max is the adaptive ceiling. Values below Min use Min.
	Max int

	// OnComplete, if set, is invoked exactly once per finished unit of
	// work, success or failure alike. It must be safe to call from
	// multiple goroutines.
	OnComplete func(err error)
}

// Pool executes batches of work items across a bounded, adjustable set
// of concurrent workers. The zero value is not usable; construct with New.
type Pool[T any, R any] struct {
	opts   Options
	logger *logging.Logger

	// mu guards current, active, started, and shutdown. cond is signalled
	// whenever a slot frees up or the limit rises.
	mu       sync.Mutex
	cond     *sync.Cond
	current  int
	active   int
	started  bool
	shutdown bool

	failed atomic.Int64
}

// New creates a pool with the given options. Call Start before
// ProcessBatch and Shutdown when done.
func New[T any, R any](opts Options) *Pool[T, R] {
	if opts.Min < 1 {
		opts.Min = 1
	}
	if opts.Max < opts.Min {
		opts.Max = opts.Min
	}
	if opts.Initial < 1 {
		opts.Initial = runtime.NumCPU()
	}
	if opts.Initial < opts.Min {
		opts.Initial = opts.Min
	}
	if opts.Initial > opts.Max {
		opts.Initial = opts.Max
	}

	p := &Pool[T, R]{
		opts:    opts,
		current: opts.Initial,
		logger:  logging.Get("pool"),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start marks the pool ready to accept batches. Starting an already
// started pool is a no-op.
func (p *Pool[T, R]) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && !p.shutdown {
		return
	}
	p.started = true
	p.shutdown = false
	p.logger.Debug("pool started", "workers", p.current, "min", p.opts.Min, "max", p.opts.Max)
}

// Shutdown stops the pool from dispatching new work. In-flight units are
// allowed to finish; a batch in progress returns whatever completed.
// Shutdown is idempotent.
func (p *Pool[T, R]) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.shutdown {
		return
	}
	p.shutdown = true
	p.cond.Broadcast()
	p.logger.Debug("pool shut down", "failed", p.failed.Load())
}

// ProcessBatch runs fn over every item using up to the current worker
// count concurrently, and returns the results of successful invocations
// in completion order. Failed items are logged and excluded. A nil or
// empty batch returns immediately without starting execution.
//
// Cancelling ctx stops new dispatches, like Shutdown; units already
// running are not interrupted, so a stalled read holds its slot until
// the operating system resolves it.
func (p *Pool[T, R]) ProcessBatch(ctx context.Context, items []T, fn func(T) (R, error)) []R {
	if len(items) == 0 {
		return nil
	}

	p.mu.Lock()
	if !p.started || p.shutdown {
		p.mu.Unlock()
		p.logger.Warn("pool not running, skipping batch", "items", len(items))
		return nil
	}
	p.mu.Unlock()

	// Wake slot waiters when the context is cancelled.
	batchDone := make(chan struct{})
	defer close(batchDone)
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.cond.Broadcast()
			p.mu.Unlock()
		case <-batchDone:
		}
	}()

	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
		results   = make([]R, 0, len(items))
	)

	for _, item := range items {
		if !p.acquireSlot(ctx) {
			break
		}

		wg.Add(1)
		go func(item T) {
			defer wg.Done()

			result, err := fn(item)

			p.mu.Lock()
			p.active--
			p.cond.Signal()
			p.mu.Unlock()

			if err != nil {
				p.failed.Add(1)
				p.logger.Error("failed to process item", "item", item, "error", err)
			} else {
				resultsMu.Lock()
				results = append(results, result)
				resultsMu.Unlock()
			}

			if p.opts.OnComplete != nil {
				p.opts.OnComplete(err)
			}
		}(item)
	}

	wg.Wait()
	return results
}

// acquireSlot blocks until a worker slot is free, returning false when
// the pool shuts down or the context is cancelled before one opens.
func (p *Pool[T, R]) acquireSlot(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.active >= p.current && !p.shutdown && ctx.Err() == nil {
		p.cond.Wait()
	}

	if p.shutdown || ctx.Err() != nil {
		return false
	}

	p.active++
	return true
}

// IncreaseWorkers raises the concurrency limit by one, clamped to the
// configured maximum. Intended to be called by the resource monitor.
func (p *Pool[T, R]) IncreaseWorkers() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current >= p.opts.Max {
		return
	}
	p.current++
	p.cond.Broadcast()
	p.logger.Debug("increased workers", "workers", p.current)
}

// ReduceWorkers lowers the concurrency limit by one, clamped to the
// configured minimum and never below 1. Units already running are
// unaffected; the lower limit applies to subsequent dispatches.
func (p *Pool[T, R]) ReduceWorkers() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current <= p.opts.Min || p.current <= 1 {
		return
	}
	p.current--
	p.logger.Debug("reduced workers", "workers", p.current)
}

// Workers returns the current concurrency limit.
func (p *Pool[T, R]) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Failed returns the number of units that returned an error since the
// pool was created.
func (p *Pool[T, R]) Failed() int64 {
	return p.failed.Load()
}
