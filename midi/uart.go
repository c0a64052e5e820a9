package midi

import (
	"context"
	"sync"
	"sync/atomic"

	"go-wavesynth/debug"
)

// UART serialises bytes from any number of host sources (serial port, host
// MIDI ports, the monitor keyboard) into the single receive context that
// owns the Receiver. It plays the role of the receive interrupt: one
// goroutine, one byte at a time.
type UART struct {
	rx       chan byte
	recv     *Receiver
	mu       sync.Mutex // keeps the bytes of one Write contiguous
	overruns atomic.Uint64
}

// NewUART buffers up to depth bytes ahead of the receiver.
func NewUART(recv *Receiver, depth int) *UART {
	if depth <= 0 {
		depth = 64
	}
	return &UART{
		rx:   make(chan byte, depth),
		recv: recv,
	}
}

// Write queues p for the receive context without blocking. Bytes that do
// not fit are discarded and counted, like a hardware data overrun.
func (u *UART) Write(p []byte) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i, b := range p {
		select {
		case u.rx <- b:
		default:
			lost := uint64(len(p) - i)
			u.overruns.Add(lost)
			debug.Log("rx", "overrun, lost %d bytes", lost)
			return len(p), nil
		}
	}
	return len(p), nil
}

// Run delivers queued bytes to the receiver until ctx is done.
func (u *UART) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-u.rx:
			u.recv.HandleByte(b)
		}
	}
}

// Overruns counts bytes lost because the receive context fell behind.
func (u *UART) Overruns() uint64 {
	return u.overruns.Load()
}

// Receiver returns the receiver this UART feeds.
func (u *UART) Receiver() *Receiver {
	return u.recv
}
