// Package queue provides the message channels that connect pipeline stages.
//
// A Channel is an ordered, multi-producer/multi-consumer queue. Values sent by
// one producer are observed in send order by any single consumer; there is no
// ordering across producers. Two variants exist:
//
//   - Bounded: a fixed-capacity channel whose Send blocks while the queue is
//     full. This is the default and gives the pipeline backpressure.
//   - Unbounded: Send never blocks and the backlog grows without limit. It is
//     the opt-in low-latency mode.
//
// Closing a channel is the completion signal: Receive drains remaining values
// and then reports ok == false. A consumer that stops early calls Abandon, after
// which every Send fails with ErrAbandoned instead of blocking forever.
package queue

import "errors"

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("queue: send on closed channel")

	// ErrAbandoned is returned by Send once the consumer has abandoned the channel.
	ErrAbandoned = errors.New("queue: channel abandoned by receiver")
)

// Channel is a queue connecting one pipeline stage to the next.
type Channel[T any] interface {
	// Send enqueues v. Bounded channels block while full.
	Send(v T) error

	// Receive blocks until a value is available or the channel is closed and
	// drained, in which case ok is false.
	Receive() (v T, ok bool)

	// TryReceive never blocks. ok reports whether a value was returned; closed
	// reports whether the channel is closed and drained.
	TryReceive() (v T, ok bool, closed bool)

	// Close marks the end of the stream. Closing twice is a no-op.
	Close()

	// Abandon tells producers that nobody will receive any more values and
	// returns the values still buffered so the caller can release them.
	Abandon() []T

	// Len returns the number of buffered values.
	Len() int
}

// New returns an unbounded channel when unbounded is set or capacity is not
// positive, and a bounded channel of the given capacity otherwise.
func New[T any](capacity int, unbounded bool) Channel[T] {
	if unbounded || capacity <= 0 {
		return NewUnbounded[T]()
	}
	return NewBounded[T](capacity)
}
