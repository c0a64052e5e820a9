//go:build headless

package audio

import "sync"

// Player keeps the playback API on machines without a sound card. Nothing
// drains the ring unless the caller uses Read.
type Player struct {
	ring    *Ring
	started bool
	mutex   sync.Mutex
}

func NewPlayer(sampleRate int) (*Player, error) {
	return &Player{ring: NewRing(DefaultRingSize)}, nil
}

func (p *Player) Start() {
	p.mutex.Lock()
	p.started = true
	p.mutex.Unlock()
}

func (p *Player) Stop() {
	p.mutex.Lock()
	p.started = false
	p.mutex.Unlock()
}

func (p *Player) Close() error {
	p.Stop()
	return nil
}

func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
