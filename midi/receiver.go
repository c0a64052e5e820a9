package midi

import (
	"io"
	"sync/atomic"

	"go-wavesynth/debug"
)

type parseState uint8

const (
	stateIdle       parseState = iota // no event in progress
	stateAwaitData0                   // status seen, note number next
	stateAwaitData1                   // note seen, velocity next
)

func (s parseState) String() string {
	switch s {
	case stateAwaitData0:
		return "awaiting byte 1"
	case stateAwaitData1:
		return "awaiting byte 2"
	}
	return "idle"
}

// ReceiverStats is a snapshot of the receive path counters.
type ReceiverStats struct {
	Bytes      uint64 // every byte handled
	Events     uint64 // complete events offered to the queue
	Ignored    uint64 // bytes that were not part of a Note On/Off message
	EchoErrors uint64
}

// Receiver parses a serial MIDI byte stream into Note On/Off events.
//
// HandleByte must be called from a single goroutine (the receive context);
// the event in progress is assembled privately and pushed to the queue only
// once complete. Running status is supported: after a complete event the
// status byte is kept and the next data byte starts a new event.
//
// Every byte is echoed to the echo writer, whether or not it parsed.
type Receiver struct {
	queue   *Queue
	echo    io.Writer
	echoBuf [1]byte

	state   parseState
	pending Event

	bytes      atomic.Uint64
	events     atomic.Uint64
	ignored    atomic.Uint64
	echoErrors atomic.Uint64
}

// NewReceiver returns a receiver feeding q. A nil echo disables pass-through.
func NewReceiver(q *Queue, echo io.Writer) *Receiver {
	if echo == nil {
		echo = io.Discard
	}
	return &Receiver{queue: q, echo: echo}
}

// HandleByte advances the state machine by one received byte.
func (r *Receiver) HandleByte(b byte) {
	r.bytes.Add(1)

	switch {
	case IsNoteStatus(b):
		// A new status always restarts framing, discarding a partial event.
		r.pending.Status = b
		r.state = stateAwaitData0

	case b >= realtimeMin:
		// Real-time bytes may arrive mid-message and do not disturb it.
		r.ignored.Add(1)

	case b&statusBit != 0:
		// Any other status ends running status until a note status arrives.
		r.state = stateIdle
		r.ignored.Add(1)

	case r.state == stateAwaitData0:
		r.pending.Data[0] = b
		r.state = stateAwaitData1

	case r.state == stateAwaitData1:
		r.pending.Data[1] = b
		r.events.Add(1)
		if err := r.queue.Push(r.pending); err != nil {
			debug.LogEvery(16, "queue", "dropped %s: %v", r.pending, err)
		}
		r.state = stateAwaitData0

	default:
		r.ignored.Add(1)
	}

	r.echoBuf[0] = b
	if _, err := r.echo.Write(r.echoBuf[:]); err != nil {
		r.echoErrors.Add(1)
	}
}

// Write feeds every byte of p through HandleByte. It lets a Receiver sit at
// the end of an io.Copy.
func (r *Receiver) Write(p []byte) (int, error) {
	for _, b := range p {
		r.HandleByte(b)
	}
	return len(p), nil
}

// Stats returns the current counters.
func (r *Receiver) Stats() ReceiverStats {
	return ReceiverStats{
		Bytes:      r.bytes.Load(),
		Events:     r.events.Load(),
		Ignored:    r.ignored.Load(),
		EchoErrors: r.echoErrors.Load(),
	}
}
