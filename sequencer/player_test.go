package sequencer

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"go-wavesynth/midi"
)

// lockedBuffer is written by Run and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) take() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := append([]byte(nil), b.buf.Bytes()...)
	b.buf.Reset()
	return out
}

func TestStepDuration(t *testing.T) {
	if got := StepDuration(120); got != 125*time.Millisecond {
		t.Errorf("StepDuration(120) = %v, want 125ms", got)
	}
}

func TestSetTempoClamps(t *testing.T) {
	p := NewPlayer(&lockedBuffer{}, 0)
	p.SetTempo(5)
	if p.Tempo() != MinTempo {
		t.Errorf("tempo = %d, want %d", p.Tempo(), MinTempo)
	}
	p.SetTempo(1000)
	if p.Tempo() != MaxTempo {
		t.Errorf("tempo = %d, want %d", p.Tempo(), MaxTempo)
	}
}

func TestAdvanceSendsNoteBytes(t *testing.T) {
	out := &lockedBuffer{}
	p := NewPlayer(out, 2)
	t0 := time.Now()
	p.start(t0)

	if !p.advance(t0) {
		t.Fatal("first step not due at start")
	}
	if got, want := out.take(), []byte{0x92, 48, 110}; !bytes.Equal(got, want) {
		t.Errorf("step 0 = % X, want % X", got, want)
	}

	if p.advance(t0.Add(time.Millisecond)) {
		t.Error("step fired early")
	}

	p.advance(t0.Add(StepDuration(DefaultTempo)))
	want := []byte{0x82, 48, 0, 0x92, 52, 80}
	if got := out.take(); !bytes.Equal(got, want) {
		t.Errorf("step 1 = % X, want % X", got, want)
	}

	p.Stop()
	if got, want := out.take(), []byte{0x82, 52, 0}; !bytes.Equal(got, want) {
		t.Errorf("stop = % X, want % X", got, want)
	}
	if _, playing, _ := p.GetState(); playing {
		t.Error("still playing after Stop")
	}
}

func TestAdvanceResyncsWhenLate(t *testing.T) {
	p := NewPlayer(&lockedBuffer{}, 0)
	t0 := time.Now()
	p.start(t0)

	late := t0.Add(time.Second)
	p.advance(late)
	if want := late.Add(StepDuration(DefaultTempo)); !p.next.Equal(want) {
		t.Errorf("next = %v, want %v", p.next.Sub(t0), want.Sub(t0))
	}
}

func TestPatternsParse(t *testing.T) {
	for _, pat := range Patterns {
		q := midi.NewQueue(64)
		r := midi.NewReceiver(q, nil)
		out := &lockedBuffer{}
		p := NewPlayer(out, 0)
		for p.Pattern().Name != pat.Name {
			p.NextPattern()
		}
		t0 := time.Now()
		p.start(t0)
		for i := 0; i < pat.Len(); i++ {
			p.advance(t0.Add(time.Duration(i) * StepDuration(DefaultTempo)))
		}
		r.Write(out.take())
		if st := r.Stats(); st.Ignored != 0 {
			t.Errorf("%s: %d bytes ignored by the receiver", pat.Name, st.Ignored)
		}
	}
}

func TestRunPlaysInRealTime(t *testing.T) {
	out := &lockedBuffer{}
	p := NewPlayer(out, 0)
	p.SetTempo(MaxTempo) // 50ms steps

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.Play()
	select {
	case <-p.UpdateChan:
	case <-time.After(time.Second):
		t.Fatal("no step fired")
	}
	cancel()
	<-done

	if len(out.take()) == 0 {
		t.Error("nothing sent")
	}
	if _, playing, _ := p.GetState(); playing {
		t.Error("still playing after Run returned")
	}
}
