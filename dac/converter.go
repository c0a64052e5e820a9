package dac

import (
	"fmt"
)

// SPI is a controller-mode serial bus. Transfer shifts one byte out and
// returns once the transfer has completed. machine.SPI on TinyGo boards has
// this method.
type SPI interface {
	Transfer(w byte) (byte, error)
}

// Pin drives the converter's active-low chip select. machine.Pin on TinyGo
// boards has these methods.
type Pin interface {
	High()
	Low()
}

// Converter writes samples to one converter on a shared bus.
type Converter struct {
	bus  SPI
	cs   Pin
	ctrl Control
}

// NewConverter releases chip select and returns a converter using ctrl for
// every write.
func NewConverter(bus SPI, cs Pin, ctrl Control) *Converter {
	cs.High()
	return &Converter{bus: bus, cs: cs, ctrl: ctrl}
}

// Control returns the command bits sent with every sample.
func (c *Converter) Control() Control {
	return c.ctrl
}

// Write sends one sample: select, control+high nibble, low byte, deselect.
// Each transfer blocks until the bus reports completion. Chip select is
// released even when a transfer fails.
func (c *Converter) Write(sample uint16) error {
	f := Encode(c.ctrl, sample)

	c.cs.Low()
	defer c.cs.High()

	if _, err := c.bus.Transfer(f[0]); err != nil {
		return fmt.Errorf("dac high byte: %w", err)
	}
	if _, err := c.bus.Transfer(f[1]); err != nil {
		return fmt.Errorf("dac low byte: %w", err)
	}
	return nil
}
