package dac

import (
	"errors"
	"sync/atomic"
)

// Framing errors reported by Decoder.
var (
	ErrNotSelected = errors.New("transfer without chip select")
	ErrFrameLength = errors.New("frame longer than two bytes")
)

// Decoder is the far end of the bus on a host: it implements both SPI and
// Pin, collects the bytes sent inside each chip-select window, and hands
// complete samples to a sink. It is driven from a single goroutine.
type Decoder struct {
	sink     func(Control, uint16)
	selected bool
	frame    Frame
	n        int

	frames atomic.Uint64
	errs   atomic.Uint64
}

// NewDecoder returns a decoder delivering every complete frame to sink.
func NewDecoder(sink func(Control, uint16)) *Decoder {
	return &Decoder{sink: sink}
}

// Low asserts chip select and starts a frame.
func (d *Decoder) Low() {
	d.selected = true
	d.n = 0
}

// High releases chip select; a two-byte frame is decoded and delivered,
// anything shorter is counted as an error.
func (d *Decoder) High() {
	if !d.selected {
		return
	}
	d.selected = false
	if d.n != len(d.frame) {
		d.errs.Add(1)
		return
	}
	d.frames.Add(1)
	ctrl, sample := Decode(d.frame)
	if d.sink != nil {
		d.sink(ctrl, sample)
	}
}

// Transfer latches one byte of the current frame.
func (d *Decoder) Transfer(w byte) (byte, error) {
	if !d.selected {
		d.errs.Add(1)
		return 0, ErrNotSelected
	}
	if d.n >= len(d.frame) {
		d.errs.Add(1)
		return 0, ErrFrameLength
	}
	d.frame[d.n] = w
	d.n++
	return 0, nil
}

// Frames counts samples delivered.
func (d *Decoder) Frames() uint64 {
	return d.frames.Load()
}

// Errors counts framing violations.
func (d *Decoder) Errors() uint64 {
	return d.errs.Load()
}
