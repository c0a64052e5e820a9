// Package audio plays the converter output on the host sound card so the
// synthesizer can be heard without the hardware converter attached.
package audio

import (
	"sync/atomic"
)

// DefaultRingSize holds a quarter second at the default 16 kHz sample rate.
const DefaultRingSize = 4096

// Ring is a single-producer single-consumer sample buffer between the
// synthesis clock and the sound card callback.
type Ring struct {
	buf   []float32
	mask  uint64
	write atomic.Uint64
	read  atomic.Uint64
	last  float32 // consumer only

	overruns  atomic.Uint64
	underruns atomic.Uint64
}

// NewRing returns a ring holding size samples, rounded up to a power of two.
func NewRing(size int) *Ring {
	n := 1
	for n < size {
		n <<= 1
	}
	return &Ring{buf: make([]float32, n), mask: uint64(n - 1)}
}

// Cap returns the ring capacity in samples.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Len returns the number of samples waiting.
func (r *Ring) Len() int {
	return int(r.write.Load() - r.read.Load())
}

// Push appends a sample. A full ring drops it and counts an overrun.
func (r *Ring) Push(s float32) bool {
	w := r.write.Load()
	if w-r.read.Load() == uint64(len(r.buf)) {
		r.overruns.Add(1)
		return false
	}
	r.buf[w&r.mask] = s
	r.write.Store(w + 1)
	return true
}

// Pop removes the oldest sample. An empty ring repeats the last sample
// returned and counts an underrun, which avoids a click on a late producer.
func (r *Ring) Pop() float32 {
	rd := r.read.Load()
	if rd == r.write.Load() {
		r.underruns.Add(1)
		return r.last
	}
	r.last = r.buf[rd&r.mask]
	r.read.Store(rd + 1)
	return r.last
}

// Overruns counts samples dropped on a full ring.
func (r *Ring) Overruns() uint64 {
	return r.overruns.Load()
}

// Underruns counts reads from an empty ring.
func (r *Ring) Underruns() uint64 {
	return r.underruns.Load()
}

// Float maps a 12-bit converter word onto -1..1.
func Float(sample uint16) float32 {
	if sample > 4095 {
		sample = 4095
	}
	return float32(sample)/2047.5 - 1
}
