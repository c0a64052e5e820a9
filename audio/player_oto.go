//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"

	"go-wavesynth/debug"
)

// Player streams samples from a ring to the default output device.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	ring    *Ring
	started bool
	mutex   sync.Mutex // setup and control only; Read is lock-free
}

// NewPlayer opens a mono float output at sampleRate.
func NewPlayer(sampleRate int) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}
	<-ready
	debug.Log("audio", "context ready at %d Hz", sampleRate)

	p := &Player{ctx: ctx, ring: NewRing(DefaultRingSize)}
	p.player = ctx.NewPlayer(p)
	return p, nil
}

// Start begins playback.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close stops playback and releases the output.
func (p *Player) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}

// IsStarted reports whether playback is running.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
