// Package wavetable holds the single-cycle waveform tables and the note
// frequency table used by the synthesis driver.
package wavetable

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownShape is returned by ParseShape for names outside the closed set.
var ErrUnknownShape = errors.New("unknown waveform shape")

// Shape selects one of the stored waveform cycles.
type Shape int

const (
	Sine Shape = iota
	Triangle
	Square
	Sawtooth

	NumShapes
)

var shapeNames = [NumShapes]string{
	Sine:     "sine",
	Triangle: "triangle",
	Square:   "square",
	Sawtooth: "sawtooth",
}

func (s Shape) String() string {
	if s < 0 || s >= NumShapes {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Valid reports whether s is one of the four stored shapes.
func (s Shape) Valid() bool {
	return s >= 0 && s < NumShapes
}

// Next cycles through the shapes in table order.
func (s Shape) Next() Shape {
	return (s + 1) % NumShapes
}

// ParseShape maps a case-insensitive shape name to its tag.
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// Table is one full waveform cycle of unsigned 8-bit samples.
// Index 0 is phase 0.
type Table []uint8

// Length returns the table length for a sample rate and the reference
// frequency one stored cycle represents (16000 / 100 = 160).
func Length(sampleRate, referenceHz int) int {
	if referenceHz <= 0 {
		return 0
	}
	return sampleRate / referenceHz
}

// GenerateSine starts and ends the cycle at 0 rather than mid-scale, so a
// voice starting at index 0 does not click.
func GenerateSine(n int) Table {
	t := make(Table, n)
	for i := range t {
		v := 127.5 * (1 + math.Sin(2*math.Pi*float64(i)/float64(n)+3*math.Pi/2))
		t[i] = clamp8(math.Round(v))
	}
	return t
}

// GenerateTriangle ramps 0 -> 255 over the first ceil(n/2) samples and back
// down over the rest. Each step floors a running float accumulator.
func GenerateTriangle(n int) Table {
	t := make(Table, n)
	if n == 0 {
		return t
	}
	incr := 255 / (float64(n) / 2)
	peak := int(math.Ceil(float64(n) / 2))

	acc := 0.0
	for i := 1; i < n; i++ {
		if i <= peak {
			acc += incr
		} else {
			acc -= incr
		}
		t[i] = clamp8(math.Floor(acc))
	}
	return t
}

// GenerateSquare is high for the first ceil(n/2) samples, low after.
func GenerateSquare(n int) Table {
	t := make(Table, n)
	flip := int(math.Ceil(float64(n) / 2))
	for i := range t {
		if i < flip {
			t[i] = 255
		}
	}
	return t
}

// GenerateSawtooth is a plain ramp with one discontinuity per cycle.
func GenerateSawtooth(n int) Table {
	t := make(Table, n)
	for i := range t {
		t[i] = uint8(255 * i / n)
	}
	return t
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// Bank holds one table per shape, all of the same length. It is built once
// at startup and only read afterwards.
type Bank struct {
	tables [NumShapes]Table
	n      int
}

// NewBank fills all four tables of length n.
func NewBank(n int) *Bank {
	return &Bank{
		tables: [NumShapes]Table{
			Sine:     GenerateSine(n),
			Triangle: GenerateTriangle(n),
			Square:   GenerateSquare(n),
			Sawtooth: GenerateSawtooth(n),
		},
		n: n,
	}
}

// Len returns the shared table length.
func (b *Bank) Len() int {
	return b.n
}

// Table returns the stored cycle for s.
func (b *Bank) Table(s Shape) Table {
	return b.tables[s]
}

// At returns the sample at a fractional phase, linearly interpolated between
// floor(phase) and the next index (wrapping to 0 after the last one).
// phase must be in [0, Len()).
func (b *Bank) At(s Shape, phase float64) float64 {
	t := b.tables[s]
	i := int(phase)
	frac := phase - float64(i)
	j := i + 1
	if j >= b.n {
		j = 0
	}
	s0 := float64(t[i])
	return s0 + (float64(t[j])-s0)*frac
}
