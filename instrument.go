package logpool

import (
	"context"
	"log/slog"
	"time"
)

// Timed wraps fn so that each invocation logs an INFO record with the
// call's duration. The wrapper is a plain TaskFunc and can be submitted
// like any other task or invoked directly.
//
//	h, _ := c.Submit(c.Timed("rebuild_index", rebuildIndex))
func (c *Controller) Timed(name string, fn TaskFunc) TaskFunc {
	return func(ctx context.Context) error {
		start := time.Now()
		err := fn(ctx)
		c.Info("timed call finished",
			slog.String("name", name),
			slog.Duration("duration", time.Since(start).Round(100*time.Microsecond)),
			slog.Bool("failed", err != nil))
		return err
	}
}
