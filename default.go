package logpool

import (
	"log/slog"
	"sync"
	"time"
)

// The package-level controller mirrors the original library's shared
// `control` instance: every file that imports logpool talks to the same
// pool and log pipeline unless it builds its own Controller.
var (
	defaultMu  sync.RWMutex
	defaultCtl *Controller
)

// Default returns the shared process-wide controller, constructing it
// from DefaultConfig on first use.
func Default() *Controller {
	defaultMu.RLock()
	c := defaultCtl
	defaultMu.RUnlock()
	if c != nil {
		return c
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultCtl == nil {
		// DefaultConfig always validates.
		defaultCtl, _ = New(DefaultConfig())
	}
	return defaultCtl
}

// SetDefault replaces the shared controller. Tests use this to install
// an instance with capture sinks; the previous controller is returned
// so the caller can shut it down or restore it.
func SetDefault(c *Controller) *Controller {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultCtl
	defaultCtl = c
	return prev
}

// Submit enqueues fn on the shared controller's default group.
func Submit(fn TaskFunc) (Handle, error) {
	return Default().Submit(fn)
}

// SubmitTo enqueues fn on the shared controller under the given group.
func SubmitTo(group string, fn TaskFunc) (Handle, error) {
	return Default().SubmitTo(group, fn)
}

// Wait blocks until the group drains on the shared controller.
func Wait(group string, timeout time.Duration) error {
	return Default().Wait(group, timeout)
}

// Debug logs through the shared controller.
func Debug(msg string, attrs ...slog.Attr) { Default().Debug(msg, attrs...) }

// Info logs through the shared controller.
func Info(msg string, attrs ...slog.Attr) { Default().Info(msg, attrs...) }

// Warn logs through the shared controller.
func Warn(msg string, attrs ...slog.Attr) { Default().Warn(msg, attrs...) }

// Critical logs through the shared controller.
func Critical(msg string, attrs ...slog.Attr) { Default().Critical(msg, attrs...) }

// Reconfigure applies a partial reconfiguration to the shared controller.
func Reconfigure(rc Reconfig) error {
	return Default().Reconfigure(rc)
}

// Shutdown tears down the shared controller.
func Shutdown(drain bool) error {
	return Default().Shutdown(drain)
}
