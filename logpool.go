// Package logpool combines a bounded worker pool with leveled log
// routing and per-group completion tracking behind a single handle.
// Callers submit fire-and-forget task functions, optionally tagged with
// a group name, and can block until everything in a group has finished.
// Task failures never reach the submitter: they are captured at the
// worker boundary and surface only as CRITICAL log records.
package logpool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mjurado/logpool/internal/group"
	"github.com/mjurado/logpool/internal/worker"
	"github.com/mjurado/logpool/logx"
)

// DefaultGroup is the group tasks land in when submitted without an
// explicit group name. It is tracked independently of all named groups.
const DefaultGroup = "default"

// TaskFunc is a unit of submitted work.
type TaskFunc = worker.TaskFunc

// Handle identifies a submitted task. It is informational only; there
// is no way to observe a task's outcome through it.
type Handle struct {
	ID    uuid.UUID
	Group string
	Seq   uint64
}

// Controller is the process-wide entry point. Construct one with New,
// share the reference, and tear it down with Shutdown before exit so
// workers are joined and buffered log records are flushed.
type Controller struct {
	router  *logx.Router
	tracker *group.Tracker
	pool    *worker.Pool

	mu      sync.Mutex
	started bool
	closed  bool
}

// New builds a controller from cfg. Workers start lazily on the first
// Submit, or eagerly via Start.
func New(cfg Config) (*Controller, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		router:  logx.NewRouter(cfg.Log),
		tracker: group.NewTracker(),
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = cfg.Workers
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	var metrics *worker.Metrics
	if cfg.MetricsRegistry != nil {
		metrics = worker.NewMetrics("logpool", "pool", cfg.MetricsRegistry)
	}

	c.pool = worker.New(worker.Config{
		Workers:       cfg.Workers,
		QueueCapacity: cfg.QueueCapacity,
		Limiter:       limiter,
		Metrics:       metrics,
		Router:        c.router,
		OnDone:        c.onTaskDone,
		OnDiscard:     c.onTaskDiscard,
	})
	return c, nil
}

// Start launches the workers. Calling it is optional; the first Submit
// starts the pool implicitly.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrPoolClosed
	}
	if c.started {
		return nil
	}
	if err := c.pool.Start(); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Submit enqueues fn on the default group.
func (c *Controller) Submit(fn TaskFunc) (Handle, error) {
	return c.SubmitTo(DefaultGroup, fn)
}

// SubmitTo enqueues fn tagged with the given group. The group counter
// is incremented before the task becomes dispatchable, so a concurrent
// Wait can never miss it. Submit blocks only on queue backpressure and
// fails with ErrPoolClosed after shutdown.
func (c *Controller) SubmitTo(groupName string, fn TaskFunc) (Handle, error) {
	if fn == nil {
		return Handle{}, ErrNilTask
	}
	if groupName == "" {
		groupName = DefaultGroup
	}
	if err := c.Start(); err != nil {
		return Handle{}, err
	}

	t := &worker.Task{
		ID:    uuid.New(),
		Group: groupName,
		Fn:    fn,
	}
	c.tracker.Add(groupName)
	if err := c.pool.Submit(t); err != nil {
		c.tracker.Done(groupName)
		return Handle{}, err
	}
	return Handle{ID: t.ID, Group: groupName, Seq: t.Seq}, nil
}

func (c *Controller) onTaskDone(t *worker.Task, _ *worker.Failure) {
	c.tracker.Done(t.Group)
}

func (c *Controller) onTaskDiscard(t *worker.Task) {
	c.router.Warn("task discarded at shutdown",
		slog.String("origin", "controller"),
		slog.String("task_id", t.ID.String()),
		slog.String("group", t.Group))
	c.tracker.Done(t.Group)
}

// Wait blocks the calling goroutine until every task submitted to the
// group has completed (success or captured failure). The empty string
// means the default group. A zero timeout waits forever; otherwise
// ErrWaitTimeout reports expiry. Groups that never saw a submission
// return immediately.
func (c *Controller) Wait(groupName string, timeout time.Duration) error {
	if groupName == "" {
		groupName = DefaultGroup
	}
	return c.tracker.Wait(groupName, timeout)
}

// Outstanding returns the number of submitted-but-unfinished tasks in
// the group.
func (c *Controller) Outstanding(groupName string) int {
	if groupName == "" {
		groupName = DefaultGroup
	}
	return c.tracker.Outstanding(groupName)
}

// Stats reports pool activity plus the outstanding count of every live
// group.
type Stats struct {
	Workers       int            `json:"workers"`
	QueueDepth    int            `json:"queue_depth"`
	QueueCapacity int            `json:"queue_capacity"`
	Submitted     uint64         `json:"submitted"`
	Completed     uint64         `json:"completed"`
	Failed        uint64         `json:"failed"`
	Discarded     uint64         `json:"discarded"`
	Groups        map[string]int `json:"groups"`
}

func (c *Controller) Stats() Stats {
	ps := c.pool.Stats()
	return Stats{
		Workers:       ps.Workers,
		QueueDepth:    ps.QueueDepth,
		QueueCapacity: ps.QueueCapacity,
		Submitted:     ps.Submitted,
		Completed:     ps.Completed,
		Failed:        ps.Failed,
		Discarded:     ps.Discarded,
		Groups:        c.tracker.Snapshot(),
	}
}

// Debug logs a DEBUG record through the router.
func (c *Controller) Debug(msg string, attrs ...slog.Attr) {
	c.log(logx.LevelDebug, msg, attrs)
}

// Info logs an INFO record through the router.
func (c *Controller) Info(msg string, attrs ...slog.Attr) {
	c.log(logx.LevelInfo, msg, attrs)
}

// Warn logs a WARNING record through the router.
func (c *Controller) Warn(msg string, attrs ...slog.Attr) {
	c.log(logx.LevelWarn, msg, attrs)
}

// Critical logs a CRITICAL record through the router.
func (c *Controller) Critical(msg string, attrs ...slog.Attr) {
	c.log(logx.LevelCritical, msg, attrs)
}

func (c *Controller) log(level logx.Level, msg string, attrs []slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+1)
	all = append(all, slog.String("origin", "controller"))
	all = append(all, attrs...)
	c.router.Log(context.Background(), level, msg, all...)
}

// Router exposes the controller's log router so collaborators can share
// the same log pipeline.
func (c *Controller) Router() *logx.Router {
	return c.router
}

// Reconfigure applies a partial runtime reconfiguration. Values are
// validated before anything is applied; on error the previous
// configuration stays fully in effect. Already-enqueued tasks are never
// dropped or duplicated by pool changes, and log records emitted after
// the call use the new settings.
func (c *Controller) Reconfigure(rc Reconfig) error {
	if err := rc.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrPoolClosed
	}

	if rc.Workers != nil {
		if err := c.pool.Resize(*rc.Workers); err != nil {
			return err
		}
	}
	if rc.QueueCapacity != nil {
		if err := c.pool.SetQueueCapacity(*rc.QueueCapacity); err != nil {
			return err
		}
	}
	if rc.LogLevel != nil || rc.Sinks != nil {
		cfg := c.router.Config()
		if rc.LogLevel != nil {
			cfg.Level = *rc.LogLevel
		}
		if rc.Sinks != nil {
			cfg.Sinks = rc.Sinks
		}
		if err := c.router.Reconfigure(cfg); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown tears the controller down. With drain=true it stops intake
// and lets every queued task finish; with drain=false queued tasks are
// discarded (their group counters still reach zero). Either way all
// workers are joined and the log sinks are flushed and closed.
// Shutdown is idempotent.
func (c *Controller) Shutdown(drain bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.pool.Shutdown(drain)
	return c.router.Close()
}
