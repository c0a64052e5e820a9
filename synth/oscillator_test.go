package synth

import (
	"math"
	"testing"

	"go-wavesynth/wavetable"
)

func TestAdvanceWraps(t *testing.T) {
	cases := []struct {
		phase, inc, want float64
	}{
		{10, 4.4, 14.4},
		{158.4, 4.4, 2.8},
		{159.9, 79.02, 78.92},
		{0, 160, 0},
	}
	for _, c := range cases {
		got := advance(c.phase, c.inc, 160)
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("advance(%v, %v) = %v, want %v", c.phase, c.inc, got, c.want)
		}
		if got < 0 || got >= 160 {
			t.Errorf("advance(%v, %v) = %v out of range", c.phase, c.inc, got)
		}
	}
}

func TestA4CompletesCycle(t *testing.T) {
	inc := wavetable.NewIncrements(160, 16000)
	a4, _ := wavetable.FromMIDI(57)
	step := inc.For(a4)

	phase := 0.0
	ticks := 0
	for {
		next := advance(phase, step, 160)
		ticks++
		if next < phase {
			phase = next
			break
		}
		phase = next
	}
	// 160 / 4.4 = 36.36, so the wrap happens on tick 37 and carries 2.8.
	if ticks != 37 {
		t.Errorf("wrapped after %d ticks, want 37", ticks)
	}
	if math.Abs(phase-2.8) > 1e-9 {
		t.Errorf("carried phase = %v, want 2.8", phase)
	}

	// The fraction carries across cycles: 400 ticks cover 11 whole cycles.
	phase = 0
	wraps := 0
	for i := 0; i < 400; i++ {
		next := advance(phase, step, 160)
		if next < phase {
			wraps++
		}
		phase = next
	}
	if total := float64(wraps)*160 + phase; math.Abs(total-1760) > 1e-6 {
		t.Errorf("after 400 ticks: wraps=%d phase=%v, want 1760 indices travelled", wraps, phase)
	}
}

func TestOscillatorLifecycle(t *testing.T) {
	var o Oscillator
	if o.Active() || o.Settings() != nil {
		t.Fatal("new oscillator should be idle")
	}

	o.Start(wavetable.Sine, 57, 4.4, 1)
	first := o.Settings()
	if !o.Active() || first.Increment != 4.4 {
		t.Fatalf("after Start: %+v", first)
	}

	o.SetShape(wavetable.Square)
	if s := o.Settings(); s.Shape != wavetable.Square || s.gen != first.gen {
		t.Errorf("SetShape changed more than the shape: %+v", s)
	}

	o.Stop()
	if o.Active() {
		t.Error("still active after Stop")
	}
	o.Stop() // idempotent

	o.Start(wavetable.Sine, 57, 4.4, 1)
	if o.Settings().gen == first.gen {
		t.Error("retrigger should change generation")
	}
}
