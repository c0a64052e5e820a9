// Package synth turns note state into converter samples: oscillators,
// the per-sample synthesis driver and the voice engine that feeds them
// from the MIDI event queue.
package synth

import (
	"sync/atomic"

	"go-wavesynth/wavetable"
)

// Voice is the immutable setting an oscillator plays. The voice engine
// publishes a new one for every change; the driver only ever sees a
// complete setting.
type Voice struct {
	Shape     wavetable.Shape
	Note      wavetable.Note
	Increment float64 // table indices per sample
	Level     float64 // 0..1
	Gate      bool

	gen uint32 // changes on every Start so the driver restarts the phase
}

// Oscillator is one phase-accumulator voice. Settings are written by the
// voice engine; phase is owned by the synthesis driver.
type Oscillator struct {
	settings atomic.Pointer[Voice]
	nextGen  uint32 // voice engine only

	phase float64 // driver only
	gen   uint32  // driver only
}

// Start (re)triggers the oscillator from phase 0.
func (o *Oscillator) Start(shape wavetable.Shape, note wavetable.Note, inc, level float64) {
	o.nextGen++
	o.settings.Store(&Voice{
		Shape:     shape,
		Note:      note,
		Increment: inc,
		Level:     level,
		Gate:      true,
		gen:       o.nextGen,
	})
}

// Stop releases the oscillator. Its phase stays where it was.
func (o *Oscillator) Stop() {
	cur := o.settings.Load()
	if cur == nil || !cur.Gate {
		return
	}
	v := *cur
	v.Gate = false
	o.settings.Store(&v)
}

// SetShape changes the waveform without restarting the phase.
func (o *Oscillator) SetShape(s wavetable.Shape) {
	cur := o.settings.Load()
	if cur == nil || cur.Shape == s {
		return
	}
	v := *cur
	v.Shape = s
	o.settings.Store(&v)
}

// Settings returns the current setting, or nil if never started.
func (o *Oscillator) Settings() *Voice {
	return o.settings.Load()
}

// Active reports whether the oscillator is gated on.
func (o *Oscillator) Active() bool {
	v := o.settings.Load()
	return v != nil && v.Gate
}

// advance moves phase by inc and wraps it into [0, n).
func advance(phase, inc, n float64) float64 {
	phase += inc
	for phase >= n {
		phase -= n
	}
	return phase
}
