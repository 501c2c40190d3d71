package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := newTaskQueue(0)
	a := &Task{}
	b := &Task{}
	require.NoError(t, q.push(a))
	require.NoError(t, q.push(b))

	got, ok := q.pop()
	require.True(t, ok)
	assert.Same(t, a, got)
	got, ok = q.pop()
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestQueuePushBlocksWhenFull(t *testing.T) {
	q := newTaskQueue(1)
	require.NoError(t, q.push(&Task{}))

	pushed := make(chan struct{})
	go func() {
		defer close(pushed)
		_ = q.push(&Task{})
	}()

	select {
	case <-pushed:
		t.Fatal("push returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	_, ok := q.pop()
	require.True(t, ok)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not resume after space freed up")
	}
}

func TestQueueGrowCapacityUnblocksSender(t *testing.T) {
	q := newTaskQueue(1)
	require.NoError(t, q.push(&Task{}))

	pushed := make(chan struct{})
	go func() {
		defer close(pushed)
		_ = q.push(&Task{})
	}()

	time.Sleep(20 * time.Millisecond)
	q.setCapacity(2)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not resume after capacity grew")
	}
	assert.Equal(t, 2, q.len())
}

func TestQueueShrinkCapacityKeepsQueuedTasks(t *testing.T) {
	q := newTaskQueue(0)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.push(&Task{}))
	}

	q.setCapacity(2)
	assert.Equal(t, 5, q.len(), "shrinking must not drop queued tasks")

	for i := 0; i < 5; i++ {
		_, ok := q.pop()
		require.True(t, ok)
	}
}

func TestQueueCloseDrainsThenStops(t *testing.T) {
	q := newTaskQueue(0)
	require.NoError(t, q.push(&Task{}))
	q.close()

	assert.ErrorIs(t, q.push(&Task{}), ErrPoolClosed)

	_, ok := q.pop()
	assert.True(t, ok, "queued tasks stay poppable after close")
	_, ok = q.pop()
	assert.False(t, ok, "pop reports exhaustion once closed and drained")
}

func TestQueueCloseReleasesBlockedSender(t *testing.T) {
	q := newTaskQueue(1)
	require.NoError(t, q.push(&Task{}))

	errs := make(chan error, 1)
	go func() {
		errs <- q.push(&Task{})
	}()

	time.Sleep(20 * time.Millisecond)
	q.close()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrPoolClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked sender was not released by close")
	}
}

func TestQueueDiscardPendingSkipsRetireSentinels(t *testing.T) {
	q := newTaskQueue(0)
	require.NoError(t, q.push(&Task{}))
	q.force(&Task{retire: true})
	require.NoError(t, q.push(&Task{}))

	dropped := q.discardPending()
	assert.Len(t, dropped, 2)
	assert.Equal(t, 0, q.len())
}

func TestQueueForceBypassesCapacity(t *testing.T) {
	q := newTaskQueue(1)
	require.NoError(t, q.push(&Task{}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		q.force(&Task{retire: true})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("force blocked behind the capacity bound")
	}
	assert.Equal(t, 2, q.len())
}
