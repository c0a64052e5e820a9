package midi

import (
	"fmt"
	"io"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-wavesynth/debug"
)

// PortInput forwards a host MIDI input port into the serial receive path.
// gomidi hands over whole messages; their raw bytes are written to the sink
// so the byte-level parser stays the only place messages are framed.
type PortInput struct {
	id       string
	inPort   drivers.In
	sink     io.Writer
	stopFunc func()
	messages atomic.Uint64
}

// NewPortInput opens inPort and starts forwarding to sink.
func NewPortInput(id string, inPort drivers.In, sink io.Writer) (*PortInput, error) {
	pi := &PortInput{
		id:     id,
		inPort: inPort,
		sink:   sink,
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		pi.messages.Add(1)
		if _, err := pi.sink.Write(msg.Bytes()); err != nil {
			debug.Log("port", "%s: forward %s: %v", pi.id, msg, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	pi.stopFunc = stop
	return pi, nil
}

func (pi *PortInput) ID() string {
	return pi.id
}

// Messages counts messages forwarded so far.
func (pi *PortInput) Messages() uint64 {
	return pi.messages.Load()
}

func (pi *PortInput) Close() error {
	if pi.stopFunc != nil {
		pi.stopFunc()
		pi.stopFunc = nil
	}
	return nil
}
