// Package dac frames 12-bit samples for an MCP4921-style serial
// digital-to-analog converter: two 8-bit transfers per sample inside one
// chip-select window.
//
// First byte:  [A/B][BUF][GA][SHDN][D11..D8]
// Second byte: [D7..D0]
package dac

import (
	"fmt"
)

// Command bits in the high nibble of the first byte.
const (
	BitChannelB uint8 = 1 << 7 // 0 writes DAC A
	BitBuffered uint8 = 1 << 6 // 1 buffers the reference input
	BitGain1x   uint8 = 1 << 5 // 1 selects 1x gain, 0 selects 2x
	BitActive   uint8 = 1 << 4 // 1 enables the output, 0 shuts it down

	controlMask uint8 = 0xF0
	highMask    uint8 = 0x0F
)

// Sample range.
const (
	Bits     = 12
	MaxValue = 1<<Bits - 1
)

// Control is the command half of the first byte.
type Control struct {
	ChannelB bool
	Buffered bool
	Gain1x   bool
	Active   bool
}

// DefaultControl writes DAC A, unbuffered reference, 1x gain, output on:
// nibble 0b0011.
var DefaultControl = Control{Gain1x: true, Active: true}

// Nibble returns the control bits positioned in the high nibble.
func (c Control) Nibble() uint8 {
	var n uint8
	if c.ChannelB {
		n |= BitChannelB
	}
	if c.Buffered {
		n |= BitBuffered
	}
	if c.Gain1x {
		n |= BitGain1x
	}
	if c.Active {
		n |= BitActive
	}
	return n
}

// ControlFromNibble decodes the high nibble of a first byte.
func ControlFromNibble(b uint8) Control {
	return Control{
		ChannelB: b&BitChannelB != 0,
		Buffered: b&BitBuffered != 0,
		Gain1x:   b&BitGain1x != 0,
		Active:   b&BitActive != 0,
	}
}

func (c Control) String() string {
	return fmt.Sprintf("%04b", c.Nibble()>>4)
}

// Frame is the two bytes sent for one sample.
type Frame [2]uint8

// Encode builds the frame for sample. Values above MaxValue are clipped.
func Encode(c Control, sample uint16) Frame {
	if sample > MaxValue {
		sample = MaxValue
	}
	return Frame{
		c.Nibble() | uint8(sample>>8)&highMask,
		uint8(sample),
	}
}

// Decode splits a frame back into control bits and sample.
func Decode(f Frame) (Control, uint16) {
	return ControlFromNibble(f[0] & controlMask), uint16(f[0]&highMask)<<8 | uint16(f[1])
}
