package queue

import "sync"

// Bounded is a Channel backed by a buffered Go channel. Send blocks while the
// buffer is full, unless the receiver abandons the channel.
type Bounded[T any] struct {
	ch        chan T
	done      chan struct{}
	doneOnce  sync.Once
	mu        sync.RWMutex // held for reading by senders, for writing by Close/Abandon
	closed    bool
	abandoned bool
}

// NewBounded creates a bounded channel holding at most capacity values.
func NewBounded[T any](capacity int) *Bounded[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Bounded[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Send enqueues v, blocking while the channel is full.
func (b *Bounded[T]) Send(v T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.abandoned {
		return ErrAbandoned
	}
	if b.closed {
		return ErrClosed
	}

	select {
	case <-b.done:
		return ErrAbandoned
	default:
	}

	select {
	case b.ch <- v:
		return nil
	case <-b.done:
		return ErrAbandoned
	}
}

// Receive blocks until a value is available or the channel is closed and drained.
func (b *Bounded[T]) Receive() (T, bool) {
	v, ok := <-b.ch
	return v, ok
}

// TryReceive returns the next value without blocking.
func (b *Bounded[T]) TryReceive() (T, bool, bool) {
	select {
	case v, ok := <-b.ch:
		if !ok {
			return v, false, true
		}
		return v, true, false
	default:
		var zero T
		return zero, false, false
	}
}

// Close ends the stream. Pending values remain receivable.
func (b *Bounded[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

// Abandon unblocks pending senders, makes further sends fail and returns the
// values still buffered.
func (b *Bounded[T]) Abandon() []T {
	// Wake blocked senders first; they hold the read lock.
	b.doneOnce.Do(func() { close(b.done) })

	b.mu.Lock()
	defer b.mu.Unlock()
	b.abandoned = true

	var rest []T
	for {
		select {
		case v, ok := <-b.ch:
			if !ok {
				return rest
			}
			rest = append(rest, v)
		default:
			return rest
		}
	}
}

// Len returns the number of buffered values.
func (b *Bounded[T]) Len() int {
	return len(b.ch)
}
