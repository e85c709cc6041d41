// Package worker runs the asynchronous skill ingestion workers.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillcat/internal/adapters/mq/queue"
	"github.com/okian/skillcat/pkg/logger"
	"github.com/okian/skillcat/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Submission is what workers read off the queue.
type Submission = queue.Submission

// Processor ingests one submission.
type Processor interface {
	Process(ctx context.Context, s Submission) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, s Submission) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, s Submission) error { return f(ctx, s) }

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// counters is shared by the workers of one pool.
type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	processor Processor
	name      string
	counters  *counters

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, processor Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		processor: processor,
		name:      "worker",
		counters:  &counters{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ch := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "error processing submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when the worker loop has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, s Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.processor.Process(ctx, s); err != nil {
		w.counters.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "ingest_error")
		return fmt.Errorf("ingest submission %s: %w", s.ID, err)
	}

	w.counters.processed.Add(1)
	w.logger.Debug(ctx, "submission ingested",
		logger.String("submission_id", s.ID),
		logger.String("run_id", s.RunID),
	)
	return nil
}

// Stats counts the outcomes of a pool.
type Stats struct {
	Workers   int   `json:"workers"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *counters
	logger   logger.Logger
}

// NewPool creates a worker pool. workerCount below one defaults to twice the
// number of CPUs.
func NewPool(workerCount int, q Queue, processor Processor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &counters{},
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, processor,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(pool.counters),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stats returns processing counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Processed: p.counters.processed.Load(),
		Failed:    p.counters.failed.Load(),
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
	}
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
