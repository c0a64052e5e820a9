package audio

import (
	"fmt"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// recordBatch is how many samples are buffered between encoder writes.
const recordBatch = 1024

// PCM16 centres a 12-bit converter word on zero and widens it to 16 bits.
func PCM16(sample uint16) int {
	if sample > 4095 {
		sample = 4095
	}
	return (int(sample) - 2048) << 4
}

// Recorder writes converter output to a mono 16-bit WAV file.
type Recorder struct {
	mu     sync.Mutex
	f      *os.File
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	frames uint64
	err    error
}

// NewRecorder creates path and starts a recording at sampleRate.
func NewRecorder(path string, sampleRate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	return &Recorder{
		f:   f,
		enc: wav.NewEncoder(f, sampleRate, 16, 1, 1),
		buf: &goaudio.IntBuffer{
			Data:           make([]int, 0, recordBatch),
			Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: 1},
			SourceBitDepth: 16,
		},
	}, nil
}

// Push appends one converter word. After a write error the recording stops
// and Close reports the error.
func (r *Recorder) Push(sample uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil || r.enc == nil {
		return
	}
	r.buf.Data = append(r.buf.Data, PCM16(sample))
	r.frames++
	if len(r.buf.Data) == recordBatch {
		r.flush()
	}
}

func (r *Recorder) flush() {
	if len(r.buf.Data) == 0 {
		return
	}
	if err := r.enc.Write(r.buf); err != nil {
		r.err = fmt.Errorf("write recording: %w", err)
	}
	r.buf.Data = r.buf.Data[:0]
}

// Frames returns the number of samples recorded.
func (r *Recorder) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close flushes buffered samples, finalises the header and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return r.err
	}
	r.flush()
	if err := r.enc.Close(); err != nil && r.err == nil {
		r.err = fmt.Errorf("finish recording: %w", err)
	}
	if err := r.f.Close(); err != nil && r.err == nil {
		r.err = err
	}
	r.enc = nil
	return r.err
}
