package group

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitOnUnknownGroupReturnsImmediately(t *testing.T) {
	tr := NewTracker()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, tr.Wait("never-submitted", 0))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on a group with no submissions")
	}
}

func TestOutstandingCountsSubmissions(t *testing.T) {
	tr := NewTracker()

	const n = 25
	for i := 0; i < n; i++ {
		tr.Add("batch")
	}
	assert.Equal(t, n, tr.Outstanding("batch"))

	for i := 0; i < n; i++ {
		tr.Done("batch")
	}
	assert.Equal(t, 0, tr.Outstanding("batch"))
	assert.NoError(t, tr.Wait("batch", 0))
}

func TestWaitBlocksUntilDrained(t *testing.T) {
	tr := NewTracker()
	tr.Add("g")
	tr.Add("g")

	released := make(chan struct{})
	go func() {
		defer close(released)
		assert.NoError(t, tr.Wait("g", 0))
	}()

	select {
	case <-released:
		t.Fatal("Wait returned with outstanding tasks")
	case <-time.After(50 * time.Millisecond):
	}

	tr.Done("g")
	select {
	case <-released:
		t.Fatal("Wait returned before count reached zero")
	case <-time.After(50 * time.Millisecond):
	}

	tr.Done("g")
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the group drained")
	}
}

func TestWaitTimeout(t *testing.T) {
	tr := NewTracker()
	tr.Add("stuck")

	start := time.Now()
	err := tr.Wait("stuck", 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrWaitTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	// The group is untouched by the timed-out wait.
	assert.Equal(t, 1, tr.Outstanding("stuck"))
}

func TestGroupReArmsAfterDraining(t *testing.T) {
	tr := NewTracker()

	tr.Add("g")
	tr.Done("g")
	require.NoError(t, tr.Wait("g", 0))

	tr.Add("g")
	err := tr.Wait("g", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrWaitTimeout, "a drained group must re-arm on the next Add")
}

func TestGroupsAreIndependent(t *testing.T) {
	tr := NewTracker()
	tr.Add("a")
	tr.Add("b")
	tr.Done("a")

	assert.NoError(t, tr.Wait("a", 0))
	assert.ErrorIs(t, tr.Wait("b", 20*time.Millisecond), ErrWaitTimeout)
}

// Concurrent adds and dones across many groups must not lose or double
// count completions.
func TestConcurrentAddDone(t *testing.T) {
	tr := NewTracker()

	const groups = 10
	const perGroup = 100
	const submitters = 4

	var wg sync.WaitGroup
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := 0; g < groups; g++ {
				name := fmt.Sprintf("group-%d", g)
				for i := 0; i < perGroup; i++ {
					tr.Add(name)
					go tr.Done(name)
				}
			}
		}()
	}
	wg.Wait()

	for g := 0; g < groups; g++ {
		name := fmt.Sprintf("group-%d", g)
		assert.NoError(t, tr.Wait(name, 5*time.Second))
		assert.Equal(t, 0, tr.Outstanding(name))
	}
}

func TestSnapshot(t *testing.T) {
	tr := NewTracker()
	tr.Add("a")
	tr.Add("a")
	tr.Add("b")

	snap := tr.Snapshot()
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, snap)

	tr.Done("b")
	snap = tr.Snapshot()
	assert.Equal(t, map[string]int{"a": 2}, snap, "drained groups are garbage-collected")
}
