package synth

import (
	"context"
	"sync/atomic"
	"time"

	"go-wavesynth/debug"
	"go-wavesynth/midi"
	"go-wavesynth/wavetable"
)

// DefaultPollRate is how often Run checks the event queue.
const DefaultPollRate = time.Millisecond

// EngineStats is a snapshot of the voice engine counters.
type EngineStats struct {
	Events     uint64 // events consumed
	Stolen     uint64 // voices taken from a still-sounding note
	OutOfRange uint64 // notes outside C0..B8
}

// slot tracks which note a driver voice is playing. Only the engine
// goroutine touches it.
type slot struct {
	note   uint8
	active bool
	age    uint64
}

// Engine is the background consumer: it drains the event queue and assigns
// notes to the driver's oscillators.
type Engine struct {
	queue    *midi.Queue
	driver   *Driver
	incs     *wavetable.Increments
	shape    atomic.Int32
	applied  wavetable.Shape
	slots    []slot
	clock    uint64
	pollRate time.Duration

	allOff     atomic.Bool
	events     atomic.Uint64
	stolen     atomic.Uint64
	outOfRange atomic.Uint64

	// Notify the monitor of note changes
	UpdateChan chan struct{}
}

// NewEngine wires a queue to a driver using the note increment table.
func NewEngine(q *midi.Queue, d *Driver, incs *wavetable.Increments, shape wavetable.Shape) *Engine {
	e := &Engine{
		queue:      q,
		driver:     d,
		incs:       incs,
		slots:      make([]slot, d.Voices()),
		pollRate:   DefaultPollRate,
		UpdateChan: make(chan struct{}, 1),
	}
	e.shape.Store(int32(shape))
	e.applied = shape
	return e
}

// Shape returns the waveform new notes start with.
func (e *Engine) Shape() wavetable.Shape {
	return wavetable.Shape(e.shape.Load())
}

// SetShape selects the waveform for every voice, including sounding ones.
// Safe to call from any goroutine; voices switch on the next Process.
func (e *Engine) SetShape(s wavetable.Shape) {
	if s.Valid() {
		e.shape.Store(int32(s))
	}
}

// Run polls the queue until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.pollRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.Process() > 0 {
				e.notifyUpdate()
			}
		}
	}
}

// Process handles every waiting event and returns how many there were.
// A pending AllOff request is applied first.
func (e *Engine) Process() int {
	n := 0
	if s := e.Shape(); s != e.applied {
		e.applied = s
		for i := range e.slots {
			e.driver.Voice(i).SetShape(s)
		}
		debug.Log("voice", "shape %s", s)
	}
	if e.allOff.Swap(false) {
		for i := range e.slots {
			e.slots[i].active = false
			e.driver.Voice(i).Stop()
		}
		n++
	}
	return n + e.queue.Drain(e.Handle)
}

// Handle applies one event to the voices.
func (e *Engine) Handle(ev midi.Event) {
	e.events.Add(1)
	switch {
	case ev.IsNoteOn():
		e.noteOn(ev.Note(), ev.Velocity())
	case ev.IsNoteOff():
		e.noteOff(ev.Note())
	}
}

func (e *Engine) noteOn(midiNote, velocity uint8) {
	note, ok := wavetable.FromMIDI(midiNote)
	if !ok {
		e.outOfRange.Add(1)
		return
	}

	i := e.pick(midiNote)
	e.clock++
	e.slots[i] = slot{note: midiNote, active: true, age: e.clock}

	level := float64(velocity) / float64(midi.DataMask)
	e.driver.Voice(i).Start(e.Shape(), note, e.incs.For(note), level)
	debug.Log("voice", "on  %s -> voice %d (vel %d)", note, i, velocity)
}

func (e *Engine) noteOff(midiNote uint8) {
	for i := range e.slots {
		s := &e.slots[i]
		if s.active && s.note == midiNote {
			s.active = false
			e.driver.Voice(i).Stop()
			debug.Log("voice", "off %d <- voice %d", midiNote, i)
		}
	}
}

// pick returns the voice for a new note: the one already playing it, a
// free one, or else the oldest.
func (e *Engine) pick(midiNote uint8) int {
	free, oldest := -1, 0
	for i, s := range e.slots {
		if s.active && s.note == midiNote {
			return i
		}
		if !s.active && free < 0 {
			free = i
		}
		if s.age < e.slots[oldest].age {
			oldest = i
		}
	}
	if free >= 0 {
		return free
	}
	e.stolen.Add(1)
	return oldest
}

// AllOff asks the engine to release every voice on its next Process. Safe
// to call from any goroutine.
func (e *Engine) AllOff() {
	e.allOff.Store(true)
}

// Stats returns the current counters.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Events:     e.events.Load(),
		Stolen:     e.stolen.Load(),
		OutOfRange: e.outOfRange.Load(),
	}
}

func (e *Engine) notifyUpdate() {
	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}
