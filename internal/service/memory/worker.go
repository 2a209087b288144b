package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/lobug/pkg/log"
)

type exchangeProcessor interface {
	ProcessExchange(ctx context.Context, user, assistant string) Report
}

type job struct {
	id        uuid.UUID
	user      string
	assistant string
	queued    time.Time
}

// Worker runs ProcessExchange off the reply path. A single goroutine drains
// the queue, so at most one cascade of each kind is ever in flight.
type Worker struct {
	proc exchangeProcessor
	jobs chan job
	stop chan context.Context
	done chan struct{}
	once sync.Once

	// mu orders every accepted send before closed flips, so drain sees it
	mu     sync.RWMutex
	closed bool
}

func NewWorker(proc exchangeProcessor, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Worker{
		proc: proc,
		jobs: make(chan job, queueSize),
		stop: make(chan context.Context),
		done: make(chan struct{}),
	}
}

// Submit enqueues an exchange and returns immediately. It reports false when
// the queue is full or the worker is shutting down; the job is then dropped
// and the next one catches the cascades up.
func (w *Worker) Submit(ctx context.Context, user, assistant string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return false
	}

	j := job{id: uuid.New(), user: user, assistant: assistant, queued: time.Now()}
	select {
	case w.jobs <- j:
		log.FromCtx(ctx).Debug().Str("job", j.id.String()).Msg("memory job queued")
		return true
	default:
		log.FromCtx(ctx).Warn().Int("queue", cap(w.jobs)).Msg("memory queue full, exchange dropped")
		return false
	}
}

func (w *Worker) Pending() int {
	return len(w.jobs)
}

func (w *Worker) Start(ctx context.Context) error {
	defer close(w.done)

	logger := log.FromCtx(ctx).With().Str("component", "memory_worker").Logger()
	logger.Info().Msg("starting memory worker")

	// jobs outlive the request that queued them
	jobCtx := context.WithoutCancel(logger.WithContext(ctx))

	for {
		select {
		case j := <-w.jobs:
			w.run(jobCtx, j)
		case sctx := <-w.stop:
			w.drain(logger.WithContext(sctx))
			logger.Info().Msg("memory worker stopped")
			return nil
		}
	}
}

// Shutdown stops accepting jobs and processes what is queued until ctx
// expires.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	var sent bool
	w.once.Do(func() {
		select {
		case w.stop <- ctx:
			sent = true
		case <-w.done:
		case <-ctx.Done():
		}
	})
	if !sent {
		return ctx.Err()
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case j := <-w.jobs:
			if ctx.Err() != nil {
				log.FromCtx(ctx).Warn().Int("dropped", len(w.jobs)+1).Msg("shutdown deadline reached, jobs dropped")
				return
			}
			w.run(ctx, j)
		default:
			return
		}
	}
}

func (w *Worker) run(ctx context.Context, j job) {
	logger := log.FromCtx(ctx).With().Str("job", j.id.String()).Logger()
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("memory job panicked")
		}
	}()

	rep := w.proc.ProcessExchange(logger.WithContext(ctx), j.user, j.assistant)

	ev := logger.Debug()
	if rep.Err != nil {
		ev = logger.Warn().Err(rep.Err)
	}
	ev.Dur("waited", start.Sub(j.queued)).
		Dur("took", time.Since(start)).
		Int("facts", rep.Extraction.Inserted+rep.Extraction.Replaced).
		Bool("summarized", rep.ShortTerm.Processed > 0).
		Bool("distilled", rep.LongTerm.Processed > 0).
		Msg("memory job done")
}
