package logpool

import (
	"errors"

	"github.com/mjurado/logpool/internal/group"
	"github.com/mjurado/logpool/internal/worker"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown.
	ErrPoolClosed = worker.ErrPoolClosed

	// ErrWaitTimeout is returned by Wait when the timeout elapses before
	// the group drains. It is distinct from successful completion.
	ErrWaitTimeout = group.ErrWaitTimeout

	// ErrInvalidConfig wraps every configuration validation failure,
	// from New as well as Reconfigure.
	ErrInvalidConfig = errors.New("logpool: invalid configuration")

	// ErrNilTask is returned by Submit when the task function is nil.
	ErrNilTask = errors.New("logpool: nil task function")
)
