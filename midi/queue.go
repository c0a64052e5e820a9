package midi

import (
	"errors"
	"math"
	"sync/atomic"
)

// ErrQueueFull is returned by Push when the consumer has not caught up.
var ErrQueueFull = errors.New("midi event queue full")

// DefaultQueueCapacity matches the ten-slot buffer of the reference board.
const DefaultQueueCapacity = 10

// Queue is a fixed-capacity single-producer/single-consumer ring of events.
//
// The producer (the receive path) only writes slots and the write index; the
// consumer only reads slots and writes the read index. A slot is filled
// before the write index moves past it, and the atomic store of the index
// publishes the slot to the consumer. When full, new events are dropped and
// counted; occupied slots are never overwritten.
//
// Indices run modulo 2*capacity so a full queue is distinguishable from an
// empty one without giving up a slot.
type Queue struct {
	slots   []Event
	write   atomic.Uint32
	read    atomic.Uint32
	dropped atomic.Uint32
}

// NewQueue returns a queue holding up to capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{slots: make([]Event, capacity)}
}

// Cap returns the number of events the queue can hold.
func (q *Queue) Cap() int {
	return len(q.slots)
}

func (q *Queue) span() uint32 {
	return uint32(2 * len(q.slots))
}

func (q *Queue) length(w, r uint32) uint32 {
	return (w + q.span() - r) % q.span()
}

// Len returns the number of events waiting.
func (q *Queue) Len() int {
	return int(q.length(q.write.Load(), q.read.Load()))
}

// Empty is true when the read and write positions meet.
func (q *Queue) Empty() bool {
	return q.write.Load() == q.read.Load()
}

// Push publishes a complete event. Producer side only.
func (q *Queue) Push(e Event) error {
	w := q.write.Load()
	if q.length(w, q.read.Load()) == uint32(len(q.slots)) {
		if d := q.dropped.Load(); d != math.MaxUint32 {
			q.dropped.Store(d + 1)
		}
		return ErrQueueFull
	}
	q.slots[w%uint32(len(q.slots))] = e
	q.write.Store((w + 1) % q.span())
	return nil
}

// Pop removes the oldest event. Consumer side only.
func (q *Queue) Pop() (Event, bool) {
	r := q.read.Load()
	if r == q.write.Load() {
		return Event{}, false
	}
	e := q.slots[r%uint32(len(q.slots))]
	q.read.Store((r + 1) % q.span())
	return e, true
}

// Drain pops every waiting event into fn and returns how many it handled.
// Events pushed while draining are left for the next call.
func (q *Queue) Drain(fn func(Event)) int {
	n := q.Len()
	for i := 0; i < n; i++ {
		e, ok := q.Pop()
		if !ok {
			return i
		}
		fn(e)
	}
	return n
}

// WriteIndex is the slot the next event will be stored in.
func (q *Queue) WriteIndex() int {
	return int(q.write.Load() % uint32(len(q.slots)))
}

// ReadIndex is the slot the consumer will read next.
func (q *Queue) ReadIndex() int {
	return int(q.read.Load() % uint32(len(q.slots)))
}

// Dropped is a saturating count of events rejected because the queue was
// full.
func (q *Queue) Dropped() uint32 {
	return q.dropped.Load()
}
