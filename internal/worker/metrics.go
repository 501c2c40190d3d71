package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for one pool. A nil *Metrics
// disables instrumentation; every observer method is nil-safe.
type Metrics struct {
	TasksSubmitted prometheus.Counter
	TasksCompleted prometheus.Counter
	TasksFailed    prometheus.Counter
	TasksDiscarded prometheus.Counter
	WorkerCount    prometheus.Gauge
	QueueDepth     prometheus.Gauge
	TaskLatency    prometheus.Histogram
}

// NewMetrics creates and registers the pool metrics on reg.
func NewMetrics(namespace, subsystem string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TasksSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_submitted_total",
			Help:      "Total number of tasks submitted to the pool",
		}),
		TasksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks that completed successfully",
		}),
		TasksFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_failed_total",
			Help:      "Total number of tasks whose failure was captured",
		}),
		TasksDiscarded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tasks_discarded_total",
			Help:      "Total number of queued tasks discarded at shutdown",
		}),
		WorkerCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "worker_count",
			Help:      "Current number of pool workers",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Current number of queued tasks",
		}),
		TaskLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "task_latency_seconds",
			Help:      "Histogram of task execution latency",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) submitted() {
	if m != nil {
		m.TasksSubmitted.Inc()
	}
}

func (m *Metrics) completed(failed bool) {
	if m == nil {
		return
	}
	if failed {
		m.TasksFailed.Inc()
	} else {
		m.TasksCompleted.Inc()
	}
}

func (m *Metrics) discarded(n int) {
	if m != nil {
		m.TasksDiscarded.Add(float64(n))
	}
}

func (m *Metrics) workers(n int) {
	if m != nil {
		m.WorkerCount.Set(float64(n))
	}
}

func (m *Metrics) depth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}

func (m *Metrics) latency(seconds float64) {
	if m != nil {
		m.TaskLatency.Observe(seconds)
	}
}
