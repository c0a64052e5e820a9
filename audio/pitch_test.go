package audio

import (
	"math"
	"testing"

	"go-wavesynth/synth"
	"go-wavesynth/wavetable"
)

type captureOutput struct{ samples []uint16 }

func (c *captureOutput) Write(s uint16) error {
	c.samples = append(c.samples, s)
	return nil
}

// render plays one MIDI note through the synthesis driver at 16 kHz.
func render(t *testing.T, shape wavetable.Shape, midiNote uint8, n int) []uint16 {
	t.Helper()
	const rate, tableLen = 16000, 160
	out := &captureOutput{}
	d, err := synth.NewDriver(wavetable.NewBank(tableLen), 1, out)
	if err != nil {
		t.Fatal(err)
	}
	note, ok := wavetable.FromMIDI(midiNote)
	if !ok {
		t.Fatalf("note %d out of range", midiNote)
	}
	d.Voice(0).Start(shape, note, wavetable.NewIncrements(tableLen, rate).For(note), 1)
	for i := 0; i < n; i++ {
		d.Tick()
	}
	return out.samples
}

func TestDominantHzOfRenderedNotes(t *testing.T) {
	cases := []struct {
		shape wavetable.Shape
		note  uint8
		want  float64
	}{
		{wavetable.Sine, 57, 440},
		{wavetable.Sine, 45, 220},
		{wavetable.Square, 60, 523.25},
		{wavetable.Sawtooth, 48, 261.63},
	}
	for _, c := range cases {
		got := DominantHz(render(t, c.shape, c.note, 2048), 16000)
		if math.Abs(got-c.want) > 5 {
			t.Errorf("%s MIDI %d: %.2f Hz, want %.2f", c.shape, c.note, got, c.want)
		}
	}
}

func TestDominantHzSilence(t *testing.T) {
	flat := make([]uint16, 512)
	for i := range flat {
		flat[i] = 2048
	}
	if got := DominantHz(flat, 16000); got != 0 {
		t.Errorf("DominantHz(flat) = %v, want 0", got)
	}
	if got := DominantHz(nil, 16000); got != 0 {
		t.Errorf("DominantHz(nil) = %v, want 0", got)
	}
}
