// Package clock provides the fixed-rate sample timebase.
package clock

import (
	"context"
	"sync/atomic"
	"time"

	"go-wavesynth/debug"
)

// Divisor is the compare value a timer counting at systemHz needs to fire
// sampleRate times per second: systemHz/sampleRate - 1 (999 for 16 MHz and
// 16 kHz).
func Divisor(systemHz, sampleRate int) int {
	return systemHz/sampleRate - 1
}

// BaudDivisor is the UART rate register value for baud at 16x
// oversampling: systemHz/16/baud - 1 (31 for MIDI on a 16 MHz part).
func BaudDivisor(systemHz, baud int) int {
	return systemHz/16/baud - 1
}

// DefaultBatch is how often the host loop wakes to run the samples that
// have fallen due.
const DefaultBatch = time.Millisecond

// maxLag is how far behind the loop may fall before it gives up on the
// missed samples instead of racing to catch up.
const maxLag = 50 * time.Millisecond

// Clock runs a tick function sampleRate times per second.
//
// A host scheduler cannot wake every 62.5 µs, so Run wakes every batch
// interval and runs however many ticks are due by wall time. Work that
// overruns its deadline is counted, and if the loop falls more than maxLag
// behind the missed ticks are skipped and counted too.
type Clock struct {
	rate  int
	batch time.Duration

	ticks    atomic.Uint64
	overruns atomic.Uint64
	skipped  atomic.Uint64
}

// New returns a clock for sampleRate ticks per second.
func New(sampleRate int) *Clock {
	return &Clock{rate: sampleRate, batch: DefaultBatch}
}

// SetBatch changes the wake interval. Call before Run.
func (c *Clock) SetBatch(d time.Duration) {
	if d > 0 {
		c.batch = d
	}
}

// Rate returns ticks per second.
func (c *Clock) Rate() int {
	return c.rate
}

// Period is the duration of one tick.
func (c *Clock) Period() time.Duration {
	return time.Second / time.Duration(c.rate)
}

// due returns how many ticks should have run after elapsed. Whole seconds
// and the remainder are scaled apart so the product stays in range for
// any uptime.
func (c *Clock) due(elapsed time.Duration) uint64 {
	if elapsed <= 0 {
		return 0
	}
	rate := uint64(c.rate)
	secs, rem := uint64(elapsed/time.Second), uint64(elapsed%time.Second)
	return secs*rate + rem*rate/uint64(time.Second)
}

// Run calls tick at the sample rate until ctx is done.
func (c *Clock) Run(ctx context.Context, tick func()) {
	ticker := time.NewTicker(c.batch)
	defer ticker.Stop()

	start := time.Now()
	var done uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		due := c.due(time.Since(start))
		if lag := due - done; due > done && time.Duration(lag)*c.Period() > maxLag {
			skip := lag - c.due(c.batch)
			c.skipped.Add(skip)
			done += skip
			debug.Log("clock", "fell %d ticks behind, skipped", skip)
		}

		batchStart := time.Now()
		n := due - done
		for ; done < due; done++ {
			tick()
		}
		c.ticks.Add(n)

		if n > 0 && time.Since(batchStart) > time.Duration(n)*c.Period() {
			c.overruns.Add(1)
			debug.LogEvery(100, "clock", "batch of %d ticks overran", n)
		}
	}
}

// Ticks counts tick calls made.
func (c *Clock) Ticks() uint64 {
	return c.ticks.Load()
}

// Overruns counts batches whose work took longer than the ticks they
// produced.
func (c *Clock) Overruns() uint64 {
	return c.overruns.Load()
}

// Skipped counts ticks dropped after falling too far behind.
func (c *Clock) Skipped() uint64 {
	return c.skipped.Load()
}
