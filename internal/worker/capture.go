package worker

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Failure is a task failure captured at the worker boundary, expressed
// as data so it can cross into the log pipeline.
type Failure struct {
	Reason string
	Trace  string
}

// capture executes a task's function and converts any failure into a
// Failure value. A panic yields the goroutine stack at the panic point;
// an error return carries just the error text. capture never re-panics,
// so a worker can treat every task as a normal completion.
func capture(ctx context.Context, t *Task) (f *Failure) {
	defer func() {
		if r := recover(); r != nil {
			f = &Failure{
				Reason: fmt.Sprintf("panic: %v", r),
				Trace:  string(debug.Stack()),
			}
		}
	}()

	if err := t.Fn(ctx); err != nil {
		return &Failure{Reason: err.Error()}
	}
	return nil
}
