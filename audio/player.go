package audio

import (
	"encoding/binary"
	"math"
)

// Stats is a snapshot of the playback counters.
type Stats struct {
	Started   bool
	Buffered  int
	Overruns  uint64
	Underruns uint64
}

// Push queues one 12-bit converter word for playback.
func (p *Player) Push(sample uint16) {
	p.ring.Push(Float(sample))
}

// Stats returns the current counters.
func (p *Player) Stats() Stats {
	return Stats{
		Started:   p.IsStarted(),
		Buffered:  p.ring.Len(),
		Overruns:  p.ring.Overruns(),
		Underruns: p.ring.Underruns(),
	}
}

// Read fills buf with queued samples as little-endian float32, the format
// the sound card callback pulls.
func (p *Player) Read(buf []byte) (int, error) {
	n := len(buf) / 4
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(p.ring.Pop()))
	}
	return n * 4, nil
}
