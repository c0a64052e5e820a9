package synth

import (
	"fmt"
	"math"
	"sync/atomic"

	"go-wavesynth/dac"
	"go-wavesynth/debug"
	"go-wavesynth/wavetable"
)

// MaxVoices bounds the oscillators rendered per sample, which bounds the
// worst-case work inside one sample period.
const MaxVoices = 8

// scopeLen is the number of recent output words kept for monitoring.
const scopeLen = 1024

// Output receives one converter word per sample.
type Output interface {
	Write(sample uint16) error
}

// DriverStats is a snapshot of the synthesis driver counters.
type DriverStats struct {
	Ticks     uint64
	Active    int
	Last      uint16
	BusErrors uint64
}

// Driver renders one sample per Tick from a fixed set of oscillators and
// sends it to the converter.
type Driver struct {
	bank   *wavetable.Bank
	n      float64
	voices []Oscillator
	out    Output

	ticks     atomic.Uint64
	busErrors atomic.Uint64
	scope     [scopeLen]atomic.Uint32
	scopePos  atomic.Uint32
}

// NewDriver returns a driver with voices oscillators (1..MaxVoices) reading
// from bank and writing to out.
func NewDriver(bank *wavetable.Bank, voices int, out Output) (*Driver, error) {
	if voices < 1 || voices > MaxVoices {
		return nil, fmt.Errorf("voices %d out of range 1-%d", voices, MaxVoices)
	}
	return &Driver{
		bank:   bank,
		n:      float64(bank.Len()),
		voices: make([]Oscillator, voices),
		out:    out,
	}, nil
}

// Voices returns the oscillator count.
func (d *Driver) Voices() int {
	return len(d.voices)
}

// Voice returns oscillator i.
func (d *Driver) Voice(i int) *Oscillator {
	return &d.voices[i]
}

// Render advances every gated oscillator by one sample and returns the
// mixed 12-bit word.
//
// Each voice adds its interpolated table value scaled by its level. The sum
// is divided by the number of gated voices, so a lone note reaches full
// scale and a full chord cannot clip.
func (d *Driver) Render() uint16 {
	var mix float64
	gated := 0
	for i := range d.voices {
		o := &d.voices[i]
		v := o.settings.Load()
		if v == nil || !v.Gate {
			continue
		}
		if v.gen != o.gen {
			o.gen = v.gen
			o.phase = 0
		}
		o.phase = advance(o.phase, v.Increment, d.n)
		mix += d.bank.At(v.Shape, o.phase) * v.Level
		gated++
	}
	if gated == 0 {
		return 0
	}
	return Scale12(mix / float64(gated))
}

// Tick renders one sample and writes it to the converter.
func (d *Driver) Tick() {
	s := d.Render()
	d.ticks.Add(1)

	pos := d.scopePos.Add(1)
	d.scope[pos%scopeLen].Store(uint32(s))

	if err := d.out.Write(s); err != nil {
		d.busErrors.Add(1)
		debug.LogEvery(1000, "dac", "write: %v", err)
	}
}

// Scope copies the most recent output words, oldest first, into dst and
// returns how many it wrote.
func (d *Driver) Scope(dst []uint16) int {
	n := min(len(dst), scopeLen)
	end := d.scopePos.Load()
	for i := 0; i < n; i++ {
		dst[i] = uint16(d.scope[(end-uint32(n-1-i))%scopeLen].Load())
	}
	return n
}

// Stats returns the current counters.
func (d *Driver) Stats() DriverStats {
	active := 0
	for i := range d.voices {
		if d.voices[i].Active() {
			active++
		}
	}
	return DriverStats{
		Ticks:     d.ticks.Load(),
		Active:    active,
		Last:      uint16(d.scope[d.scopePos.Load()%scopeLen].Load()),
		BusErrors: d.busErrors.Load(),
	}
}

// Scale12 maps an 8-bit amplitude (0..255) onto the converter's 12-bit
// range, rounding and clipping.
func Scale12(v float64) uint16 {
	w := math.Round(v * dac.MaxValue / 255)
	switch {
	case w <= 0:
		return 0
	case w >= dac.MaxValue:
		return dac.MaxValue
	}
	return uint16(w)
}
