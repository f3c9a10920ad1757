// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/infra/metrics"
)

var (
	ErrNilTask   = errors.New("nil task")
	ErrQueueFull = errors.New("worker queue full")
	ErrStopped   = errors.New("worker pool stopped")
)

// TaskTimeout bounds a single task, including tasks drained during Stop.
const TaskTimeout = 10 * time.Second

// A very small worker pool that runs submitted tasks in the background.
// Submissions never block: a saturated queue drops the task. Only Stop ends the
// workers; cancelling the Start context does not, so queued work survives shutdown.

type Task func(ctx context.Context) error

type Pool struct {
	wg      sync.WaitGroup
	jobs    chan Task
	quit    chan struct{}
	n       int
	log     *zerolog.Logger
	mu      sync.RWMutex
	stopped bool
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	l := logger.With().Str("component", "worker.Pool").Logger()
	return &Pool{jobs: make(chan Task, workers*4), quit: make(chan struct{}), n: workers, log: &l}
}

// Start launches the workers. Tasks receive ctx's values but not its cancellation.
func (p *Pool) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-p.quit:
					p.drain(ctx, id)
					return
				case task := <-p.jobs:
					p.run(ctx, id, task)
				}
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, task Task) {
	if task == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, TaskTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			metrics.IncWorkerTask("failed")
			p.log.Error().Interface("panic", r).Int("worker", id).Msg("task panicked")
		}
	}()
	if err := task(ctx); err != nil {
		metrics.IncWorkerTask("failed")
		p.log.Warn().Err(err).Int("worker", id).Msg("task error")
		return
	}
	metrics.IncWorkerTask("completed")
}

// drain runs whatever is still queued once Stop has been called.
func (p *Pool) drain(ctx context.Context, id int) {
	for {
		select {
		case task := <-p.jobs:
			p.run(ctx, id, task)
		default:
			return
		}
	}
}

// Stop refuses new work, finishes queued tasks and waits for the workers.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.quit)
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		metrics.IncWorkerTask("dropped")
		return ErrQueueFull
	}
}
