package worker

import "sync"

// taskQueue is a capacity-bounded FIFO guarded by a condition variable.
// A channel would cover the common case, but the queue's capacity is
// reconfigurable at runtime and shutdown needs to discard pending items
// without racing blocked senders, so the lock-and-cond shape wins.
type taskQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []*Task
	capacity int // 0 means unbounded
	closed   bool
}

func newTaskQueue(capacity int) *taskQueue {
	q := &taskQueue{capacity: capacity}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a task, blocking while a bounded queue is full.
// It fails with ErrPoolClosed once the queue has been closed.
func (q *taskQueue) push(t *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.closed && q.capacity > 0 && len(q.items) >= q.capacity {
		q.cond.Wait()
	}
	if q.closed {
		return ErrPoolClosed
	}
	q.items = append(q.items, t)
	q.cond.Broadcast()
	return nil
}

// force appends a task ignoring the capacity bound. Used for worker
// retirement sentinels, which must never block behind backpressure.
func (q *taskQueue) force(t *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, t)
	q.cond.Broadcast()
}

// pop removes the oldest task, blocking while the queue is open and
// empty. ok is false once the queue is closed and fully drained.
func (q *taskQueue) pop() (t *Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	t = q.items[0]
	q.items = q.items[1:]
	q.cond.Broadcast()
	return t, true
}

// discardPending removes and returns every not-yet-started task.
func (q *taskQueue) discardPending() []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := make([]*Task, 0, len(q.items))
	for _, t := range q.items {
		if !t.retire {
			dropped = append(dropped, t)
		}
	}
	q.items = nil
	q.cond.Broadcast()
	return dropped
}

// setCapacity adjusts the bound without touching queued tasks. Shrinking
// below the current depth only delays new pushes until workers drain
// the excess.
func (q *taskQueue) setCapacity(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.capacity = n
	q.cond.Broadcast()
}

// close stops intake. Queued tasks stay poppable until drained.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *taskQueue) cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.capacity
}
