package logpool

import (
	"fmt"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mjurado/logpool/logx"
)

// Config configures a Controller.
type Config struct {
	// Workers is the number of pool workers. Defaults to GOMAXPROCS.
	Workers int

	// QueueCapacity bounds the task queue. Zero means unbounded;
	// submitters block while a bounded queue is full.
	QueueCapacity int

	// RatePerSecond throttles task starts across all workers.
	// Zero disables throttling. RateBurst defaults to Workers.
	RatePerSecond float64
	RateBurst     int

	// Log is the initial router configuration.
	Log logx.Config

	// MetricsRegistry, when set, receives the pool's Prometheus
	// collectors. Nil disables metrics.
	MetricsRegistry prometheus.Registerer
}

// DefaultConfig returns a config matching the zero-setup defaults:
// GOMAXPROCS workers, an unbounded queue, and INFO-level text logging
// to stdout.
func DefaultConfig() Config {
	return Config{
		Workers: runtime.GOMAXPROCS(0),
		Log: logx.Config{
			Level: logx.LevelInfo,
			Sinks: []logx.Sink{logx.NewWriterSink(os.Stdout, logx.FormatText)},
		},
	}
}

func (cfg *Config) validate() error {
	if cfg.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, cfg.Workers)
	}
	if cfg.QueueCapacity < 0 {
		return fmt.Errorf("%w: queue capacity must not be negative, got %d", ErrInvalidConfig, cfg.QueueCapacity)
	}
	if cfg.RatePerSecond < 0 {
		return fmt.Errorf("%w: rate must not be negative, got %v", ErrInvalidConfig, cfg.RatePerSecond)
	}
	for i, s := range cfg.Log.Sinks {
		if s == nil {
			return fmt.Errorf("%w: log sink %d is nil", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Reconfig carries a partial runtime reconfiguration. Nil fields leave
// the corresponding setting untouched.
type Reconfig struct {
	Workers       *int
	QueueCapacity *int
	LogLevel      *logx.Level
	// Sinks, when non-nil, replaces the active sink set.
	Sinks []logx.Sink
}

func (rc *Reconfig) validate() error {
	if rc.Workers != nil && *rc.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, *rc.Workers)
	}
	if rc.QueueCapacity != nil && *rc.QueueCapacity < 0 {
		return fmt.Errorf("%w: queue capacity must not be negative, got %d", ErrInvalidConfig, *rc.QueueCapacity)
	}
	for i, s := range rc.Sinks {
		if s == nil {
			return fmt.Errorf("%w: log sink %d is nil", ErrInvalidConfig, i)
		}
	}
	return nil
}
