// Package group tracks outstanding task counts per named group and
// lets callers block until a group drains to zero.
package group

import (
	"errors"
	"sync"
	"time"
)

// ErrWaitTimeout is returned by Wait when the timeout elapses before
// the group's outstanding count reaches zero.
var ErrWaitTimeout = errors.New("group: wait timed out")

type state struct {
	outstanding int
	done        chan struct{}
}

// Tracker maintains per-group outstanding counts. A group springs into
// existence on its first Add and is dropped from the map once it drains,
// so the map only holds groups with work in flight.
type Tracker struct {
	mu     sync.Mutex
	groups map[string]*state
}

func NewTracker() *Tracker {
	return &Tracker{groups: make(map[string]*state)}
}

// Add registers one submitted task against the group. It must be called
// before the task becomes dispatchable so that a concurrent Wait can
// never observe a stale zero.
func (t *Tracker) Add(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.groups[name]
	if !ok {
		g = &state{done: make(chan struct{})}
		t.groups[name] = g
	}
	g.outstanding++
}

// Done records the completion of one task in the group. When the count
// reaches zero all current waiters are released and the group entry is
// garbage-collected; a later Add re-arms it.
func (t *Tracker) Done(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.groups[name]
	if !ok {
		return
	}
	g.outstanding--
	if g.outstanding <= 0 {
		close(g.done)
		delete(t.groups, name)
	}
}

// Wait blocks until the group's outstanding count reaches zero or the
// timeout elapses. A zero timeout waits forever. Groups that never saw
// a submission return immediately.
func (t *Tracker) Wait(name string, timeout time.Duration) error {
	t.mu.Lock()
	g, ok := t.groups[name]
	if !ok || g.outstanding == 0 {
		t.mu.Unlock()
		return nil
	}
	done := g.done
	t.mu.Unlock()

	if timeout <= 0 {
		<-done
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrWaitTimeout
	}
}

// Outstanding returns the group's current outstanding count.
func (t *Tracker) Outstanding(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if g, ok := t.groups[name]; ok {
		return g.outstanding
	}
	return 0
}

// Snapshot returns the outstanding counts of all live groups.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]int, len(t.groups))
	for name, g := range t.groups {
		out[name] = g.outstanding
	}
	return out
}
