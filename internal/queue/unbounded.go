package queue

import "sync"

// compactThreshold is the number of consumed slots after which the backing
// slice is compacted.
const compactThreshold = 1024

// Unbounded is a Channel whose Send never blocks.
type Unbounded[T any] struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []T
	head      int
	closed    bool
	abandoned bool
}

// NewUnbounded creates an empty unbounded channel.
func NewUnbounded[T any]() *Unbounded[T] {
	u := &Unbounded[T]{}
	u.cond = sync.NewCond(&u.mu)
	return u
}

// Send appends v to the queue.
func (u *Unbounded[T]) Send(v T) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.abandoned {
		return ErrAbandoned
	}
	if u.closed {
		return ErrClosed
	}

	u.items = append(u.items, v)
	u.cond.Signal()
	return nil
}

// Receive blocks until a value is available or the queue is closed and empty.
func (u *Unbounded[T]) Receive() (T, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for u.lenLocked() == 0 && !u.closed && !u.abandoned {
		u.cond.Wait()
	}

	if u.lenLocked() == 0 {
		var zero T
		return zero, false
	}
	return u.popLocked(), true
}

// TryReceive returns the next value without blocking.
func (u *Unbounded[T]) TryReceive() (T, bool, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.lenLocked() == 0 {
		var zero T
		return zero, false, u.closed || u.abandoned
	}
	return u.popLocked(), true, false
}

// Close ends the stream and wakes every blocked receiver.
func (u *Unbounded[T]) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return
	}
	u.closed = true
	u.cond.Broadcast()
}

// Abandon drops the backlog, returning it, and makes further sends fail.
func (u *Unbounded[T]) Abandon() []T {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.abandoned = true
	rest := make([]T, u.lenLocked())
	copy(rest, u.items[u.head:])
	u.items = nil
	u.head = 0
	u.cond.Broadcast()
	return rest
}

// Len returns the number of queued values.
func (u *Unbounded[T]) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lenLocked()
}

func (u *Unbounded[T]) lenLocked() int {
	return len(u.items) - u.head
}

func (u *Unbounded[T]) popLocked() T {
	var zero T
	v := u.items[u.head]
	u.items[u.head] = zero
	u.head++

	switch {
	case u.head == len(u.items):
		u.items = u.items[:0]
		u.head = 0
	case u.head >= compactThreshold && u.head*2 >= len(u.items):
		n := copy(u.items, u.items[u.head:])
		clear(u.items[n:])
		u.items = u.items[:n]
		u.head = 0
	}
	return v
}
