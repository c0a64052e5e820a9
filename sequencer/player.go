// Package sequencer plays looped note patterns into the MIDI receive path
// so the synthesizer can be exercised without a keyboard attached.
package sequencer

import (
	"context"
	"io"
	"sync"
	"time"

	"go-wavesynth/debug"
	"go-wavesynth/midi"
)

// Tempo limits in BPM
const (
	MinTempo     = 20
	MaxTempo     = 300
	DefaultTempo = 120
)

// StepDuration is the length of one step at tempo.
func StepDuration(tempo int) time.Duration {
	return time.Minute / time.Duration(tempo*StepsPerBeat)
}

// Player sends each pattern step as raw Note On/Off bytes to out.
type Player struct {
	out     io.Writer
	channel uint8

	mu       sync.Mutex
	pattern  int
	tempo    int
	playing  bool
	step     int
	next     time.Time
	sounding []uint8

	interruptChan chan struct{} // wake Run when state changes

	// Notify the monitor of step changes
	UpdateChan chan struct{}
}

// NewPlayer returns a stopped player writing to out on channel.
func NewPlayer(out io.Writer, channel uint8) *Player {
	return &Player{
		out:           out,
		channel:       channel & midi.ChannelMask,
		tempo:         DefaultTempo,
		interruptChan: make(chan struct{}, 1),
		UpdateChan:    make(chan struct{}, 1),
	}
}

// Play starts the current pattern from its first step.
func (p *Player) Play() {
	p.start(time.Now())
}

func (p *Player) start(now time.Time) {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.step = 0
	p.next = now
	p.mu.Unlock()

	debug.Log("seq", "play %s at %d bpm", p.Pattern().Name, p.Tempo())
	p.interrupt()
}

// Stop releases sounding notes and stops playback.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.playing = false
	p.release()
	p.interrupt()
}

// Toggle starts or stops playback.
func (p *Player) Toggle() {
	if _, playing, _ := p.GetState(); playing {
		p.Stop()
	} else {
		p.Play()
	}
}

// SetTempo sets the BPM
func (p *Player) SetTempo(bpm int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}
	p.tempo = bpm
}

// Tempo returns the BPM.
func (p *Player) Tempo() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tempo
}

// NextPattern switches to the next built-in pattern. A playing pattern
// continues from the same step position.
func (p *Player) NextPattern() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pattern = (p.pattern + 1) % len(Patterns)
}

// Pattern returns the selected pattern.
func (p *Player) Pattern() Pattern {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Patterns[p.pattern]
}

// GetState returns the current sequencer state
func (p *Player) GetState() (step int, playing bool, tempo int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step, p.playing, p.tempo
}

// Run fires steps on time until ctx is done (blocking - run in goroutine).
func (p *Player) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		p.mu.Lock()
		wait := time.Hour
		if p.playing {
			wait = max(time.Until(p.next), 0)
		}
		p.mu.Unlock()
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			p.Stop()
			return
		case <-p.interruptChan:
			// State changed, recalculate
		case now := <-timer.C:
			if p.advance(now) {
				p.notifyUpdate()
			}
		}
	}
}

// advance fires the step that is due at now, if any.
func (p *Player) advance(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || now.Before(p.next) {
		return false
	}

	p.release()
	st := Patterns[p.pattern].At(p.step)
	for _, n := range st.Notes {
		p.send(midi.NewNoteOn(p.channel, n, st.Velocity))
		p.sounding = append(p.sounding, n)
	}
	p.step = (p.step + 1) % Patterns[p.pattern].Len()

	dur := StepDuration(p.tempo)
	p.next = p.next.Add(dur)
	if now.Sub(p.next) > dur {
		// Too far behind, drop the missed steps.
		debug.Log("seq", "late by %v, resyncing", now.Sub(p.next))
		p.next = now.Add(dur)
	}
	return true
}

// release sends Note Off for every sounding note. Caller holds mu.
func (p *Player) release() {
	for _, n := range p.sounding {
		p.send(midi.NewNoteOff(p.channel, n, 0))
	}
	p.sounding = p.sounding[:0]
}

func (p *Player) send(ev midi.Event) {
	if _, err := p.out.Write(ev.Bytes()); err != nil {
		debug.Log("seq", "send %s: %v", ev, err)
	}
}

func (p *Player) interrupt() {
	select {
	case p.interruptChan <- struct{}{}:
	default:
	}
}

func (p *Player) notifyUpdate() {
	select {
	case p.UpdateChan <- struct{}{}:
	default:
	}
}
