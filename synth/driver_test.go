package synth

import (
	"errors"
	"sync"
	"testing"

	"go-wavesynth/dac"
	"go-wavesynth/midi"
	"go-wavesynth/wavetable"
)

type captureOutput struct {
	samples []uint16
	err     error
}

func (c *captureOutput) Write(s uint16) error {
	c.samples = append(c.samples, s)
	return c.err
}

func newTestDriver(t *testing.T, voices int) (*Driver, *captureOutput) {
	t.Helper()
	out := &captureOutput{}
	d, err := NewDriver(wavetable.NewBank(160), voices, out)
	if err != nil {
		t.Fatalf("NewDriver: %v", err)
	}
	return d, out
}

func TestNewDriverBoundsVoices(t *testing.T) {
	bank := wavetable.NewBank(160)
	for _, n := range []int{0, MaxVoices + 1} {
		if _, err := NewDriver(bank, n, &captureOutput{}); err == nil {
			t.Errorf("NewDriver(%d voices) should fail", n)
		}
	}
}

func TestScale12(t *testing.T) {
	cases := []struct {
		in   float64
		want uint16
	}{
		{-3, 0}, {0, 0}, {127.5, 2048}, {255, 4095}, {300, 4095},
	}
	for _, c := range cases {
		if got := Scale12(c.in); got != c.want {
			t.Errorf("Scale12(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDriverSilentWithoutVoices(t *testing.T) {
	d, out := newTestDriver(t, 2)
	for i := 0; i < 10; i++ {
		d.Tick()
	}
	for _, s := range out.samples {
		if s != 0 {
			t.Fatalf("idle output = %d, want 0", s)
		}
	}
}

func TestDriverRendersInterpolatedSquare(t *testing.T) {
	d, out := newTestDriver(t, 1)
	// 0.5 per sample: phases 0.5, 1.0, ... stay on the high half.
	d.Voice(0).Start(wavetable.Square, 0, 0.5, 1)
	d.Tick()
	d.Tick()
	if out.samples[0] != dac.MaxValue || out.samples[1] != dac.MaxValue {
		t.Errorf("square high half = %v, want full scale", out.samples)
	}

	// Half way between index 79 (255) and 80 (0).
	d.voices[0].phase = 79
	d.Tick()
	if got := out.samples[2]; got != Scale12(127.5) {
		t.Errorf("edge sample = %d, want %d", got, Scale12(127.5))
	}
}

func TestDriverRetriggerRestartsPhase(t *testing.T) {
	d, _ := newTestDriver(t, 1)
	d.Voice(0).Start(wavetable.Sawtooth, 0, 10, 1)
	for i := 0; i < 5; i++ {
		d.Tick()
	}
	if d.voices[0].phase != 50 {
		t.Fatalf("phase = %v, want 50", d.voices[0].phase)
	}
	d.Voice(0).Start(wavetable.Sawtooth, 0, 10, 1)
	d.Tick()
	if d.voices[0].phase != 10 {
		t.Errorf("phase after retrigger = %v, want 10", d.voices[0].phase)
	}
}

func TestDriverStoppedVoiceFreezes(t *testing.T) {
	d, out := newTestDriver(t, 1)
	d.Voice(0).Start(wavetable.Sawtooth, 0, 3, 1)
	d.Tick()
	d.Voice(0).Stop()
	d.Tick()
	if d.voices[0].phase != 3 || out.samples[1] != 0 {
		t.Errorf("stopped voice: phase=%v sample=%d", d.voices[0].phase, out.samples[1])
	}
}

func TestDriverMixHeadroom(t *testing.T) {
	d, out := newTestDriver(t, 4)
	for i := 0; i < 4; i++ {
		d.Voice(i).Start(wavetable.Square, 0, 0.1, 1)
	}
	d.Tick()
	if out.samples[0] != dac.MaxValue {
		t.Errorf("four full voices = %d, want %d", out.samples[0], dac.MaxValue)
	}

	d2, out2 := newTestDriver(t, 4)
	d2.Voice(0).Start(wavetable.Square, 0, 0.1, 1)
	d2.Tick()
	if out2.samples[0] != dac.MaxValue {
		t.Errorf("one of four voices = %d, want full scale %d", out2.samples[0], dac.MaxValue)
	}

	// Two gated voices average; the idle ones do not dilute the mix.
	d2.Voice(1).Start(wavetable.Square, 0, 0.1, 0.5)
	d2.Tick()
	if want := Scale12((255 + 127.5) / 2); out2.samples[1] != want {
		t.Errorf("two of four voices = %d, want %d", out2.samples[1], want)
	}

	d2.Voice(0).Stop()
	d2.Tick()
	if want := Scale12(127.5); out2.samples[2] != want {
		t.Errorf("after release = %d, want %d", out2.samples[2], want)
	}
}

func TestDriverCountsBusErrors(t *testing.T) {
	d, out := newTestDriver(t, 1)
	out.err = errors.New("bus stuck")
	d.Tick()
	d.Tick()
	if st := d.Stats(); st.BusErrors != 2 || st.Ticks != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestDriverScope(t *testing.T) {
	d, out := newTestDriver(t, 1)
	d.Voice(0).Start(wavetable.Sawtooth, 0, 1, 1)
	for i := 0; i < 20; i++ {
		d.Tick()
	}
	got := make([]uint16, 5)
	if n := d.Scope(got); n != 5 {
		t.Fatalf("Scope returned %d", n)
	}
	for i, s := range got {
		if want := out.samples[15+i]; s != want {
			t.Errorf("scope[%d] = %d, want %d", i, s, want)
		}
	}
	if d.Stats().Last != out.samples[19] {
		t.Errorf("Last = %d, want %d", d.Stats().Last, out.samples[19])
	}
}

// The voice engine and the driver run concurrently; run with -race.
func TestDriverConcurrentWithEngine(t *testing.T) {
	d, _ := newTestDriver(t, 4)
	q := midi.NewQueue(midi.DefaultQueueCapacity)
	e := NewEngine(q, d, wavetable.NewIncrements(160, 16000), wavetable.Sine)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			d.Tick()
		}
	}()
	for i := 0; i < 500; i++ {
		e.Handle(midi.NewNoteOn(0, uint8(40+i%20), 100))
		e.Handle(midi.NewNoteOff(0, uint8(40+(i+10)%20), 0))
		if i%100 == 0 {
			e.SetShape(wavetable.Shape(i/100) % wavetable.NumShapes)
			e.Process()
		}
	}
	wg.Wait()
}
