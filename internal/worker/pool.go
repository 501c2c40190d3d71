// Package worker implements the bounded pool that executes submitted
// tasks. Workers pull from a shared queue, run each task through the
// failure-capture boundary, and report completions back to the owner.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mjurado/logpool/logx"
)

// ErrPoolClosed is returned by Submit once the pool has been shut down.
var ErrPoolClosed = errors.New("worker: pool closed")

// TaskFunc is a unit of work. The context is the pool's base context;
// it is never cancelled mid-execution.
type TaskFunc func(ctx context.Context) error

// Task is one unit of submitted work. Immutable once enqueued.
type Task struct {
	ID    uuid.UUID
	Group string
	Seq   uint64
	Fn    TaskFunc

	enqueuedAt time.Time
	retire     bool // sentinel that tells one worker to exit
}

// Config assembles a pool's collaborators. OnDone fires exactly once
// per executed task, after the failure (if any) has been logged.
// OnDiscard fires for tasks dropped by a non-draining shutdown.
type Config struct {
	Workers       int
	QueueCapacity int
	Limiter       *rate.Limiter
	Metrics       *Metrics
	Router        *logx.Router
	OnDone        func(t *Task, f *Failure)
	OnDiscard     func(t *Task)
}

// Pool owns the task queue and the worker goroutines.
type Pool struct {
	mu      sync.Mutex
	q       *taskQueue
	target  int
	started bool
	closed  bool
	wg      sync.WaitGroup

	router    *logx.Router
	metrics   *Metrics
	limiter   *rate.Limiter
	onDone    func(t *Task, f *Failure)
	onDiscard func(t *Task)

	seq       atomic.Uint64
	nextID    atomic.Int64
	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// New creates an unstarted pool. Call Start to launch the workers.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	capacity := cfg.QueueCapacity
	if capacity < 0 {
		capacity = 0
	}
	if cfg.Router == nil {
		cfg.Router = logx.NewRouter(logx.Config{Level: logx.LevelCritical})
	}
	return &Pool{
		q:         newTaskQueue(capacity),
		target:    workers,
		router:    cfg.Router,
		metrics:   cfg.Metrics,
		limiter:   cfg.Limiter,
		onDone:    cfg.OnDone,
		onDiscard: cfg.OnDiscard,
	}
}

// Start launches the configured number of workers. It is idempotent and
// fails only after shutdown.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	if p.started {
		return nil
	}
	p.started = true
	p.spawnLocked(p.target)
	p.metrics.workers(p.target)
	return nil
}

func (p *Pool) spawnLocked(n int) {
	for i := 0; i < n; i++ {
		id := p.nextID.Add(1)
		p.wg.Add(1)
		go p.run(id)
	}
}

// Submit enqueues a task. It blocks only while a bounded queue is full
// and fails with ErrPoolClosed once the pool is shut down. The caller
// must have registered the task with its group tracker beforehand.
func (p *Pool) Submit(t *Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	t.Seq = p.seq.Add(1)
	t.enqueuedAt = time.Now()
	if err := p.q.push(t); err != nil {
		return err
	}
	p.submitted.Add(1)
	p.metrics.submitted()
	p.metrics.depth(p.q.len())
	return nil
}

// Resize adjusts the worker count. Growing spawns workers immediately;
// shrinking enqueues retirement sentinels so surplus workers exit after
// the task they are currently running.
func (p *Pool) Resize(n int) error {
	if n < 1 {
		return errors.New("worker: worker count must be at least 1")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	diff := n - p.target
	p.target = n
	if !p.started {
		return nil
	}
	if diff > 0 {
		p.spawnLocked(diff)
	} else {
		for i := 0; i < -diff; i++ {
			p.q.force(&Task{retire: true})
		}
	}
	p.metrics.workers(n)
	return nil
}

// SetQueueCapacity changes the queue bound without dropping or
// duplicating queued tasks. Zero means unbounded.
func (p *Pool) SetQueueCapacity(n int) error {
	if n < 0 {
		return errors.New("worker: queue capacity must not be negative")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.q.setCapacity(n)
	return nil
}

// Shutdown stops intake and releases all workers. With drain=true every
// queued task still runs to completion first; with drain=false queued
// tasks are discarded through OnDiscard. In-flight tasks always finish.
func (p *Pool) Shutdown(drain bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if !drain {
		droppedTasks := p.q.discardPending()
		p.dropped.Add(uint64(len(droppedTasks)))
		p.metrics.discarded(len(droppedTasks))
		for _, t := range droppedTasks {
			if p.onDiscard != nil {
				p.onDiscard(t)
			}
		}
	}
	p.q.close()
	p.wg.Wait()
	p.metrics.workers(0)
	p.metrics.depth(0)
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Workers       int
	QueueDepth    int
	QueueCapacity int
	Submitted     uint64
	Completed     uint64
	Failed        uint64
	Discarded     uint64
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	target := p.target
	p.mu.Unlock()
	return Stats{
		Workers:       target,
		QueueDepth:    p.q.len(),
		QueueCapacity: p.q.cap(),
		Submitted:     p.submitted.Load(),
		Completed:     p.completed.Load(),
		Failed:        p.failed.Load(),
		Discarded:     p.dropped.Load(),
	}
}

// run is the per-worker dispatch loop. A task failure never terminates
// the worker; only queue exhaustion or a retirement sentinel does.
func (p *Pool) run(id int64) {
	defer p.wg.Done()

	p.router.Debug("worker started",
		slog.String("origin", "worker"),
		slog.Int64("worker_id", id))

	for {
		t, ok := p.q.pop()
		if !ok {
			p.router.Debug("worker stopped",
				slog.String("origin", "worker"),
				slog.Int64("worker_id", id))
			return
		}
		if t.retire {
			p.router.Debug("worker retired",
				slog.String("origin", "worker"),
				slog.Int64("worker_id", id))
			return
		}
		p.metrics.depth(p.q.len())

		if p.limiter != nil {
			_ = p.limiter.Wait(context.Background())
		}

		start := time.Now()
		f := capture(context.Background(), t)
		p.metrics.latency(time.Since(start).Seconds())

		if f != nil {
			p.failed.Add(1)
			p.metrics.completed(true)
			attrs := []slog.Attr{
				slog.String("origin", "worker"),
				slog.Int64("worker_id", id),
				slog.String("task_id", t.ID.String()),
				slog.String("group", t.Group),
				slog.String("error", f.Reason),
			}
			if f.Trace != "" {
				attrs = append(attrs, slog.String("trace", f.Trace))
			}
			p.router.Critical("task failed", attrs...)
		} else {
			p.completed.Add(1)
			p.metrics.completed(false)
		}

		if p.onDone != nil {
			p.onDone(t, f)
		}
	}
}
