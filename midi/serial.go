package midi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"

	"go-wavesynth/debug"
)

// BaudRate is the MIDI 1.0 serial rate (31.25 kbaud, 8N1).
const BaudRate = 31250

// SerialPort is a serial MIDI link: reads feed the receiver, writes carry the
// echo back out.
type SerialPort struct {
	name string
	port *serial.Port
}

// OpenSerial opens device at baud (0 means BaudRate), 8 data bits, no
// parity, one stop bit. Reads time out so a reader loop can notice
// cancellation.
func OpenSerial(device string, baud int) (*SerialPort, error) {
	if baud == 0 {
		baud = BaudRate
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	if err := p.Flush(); err != nil {
		p.Close()
		return nil, fmt.Errorf("flush serial %s: %w", device, err)
	}
	debug.Log("port", "serial %s open at %d baud", device, baud)
	return &SerialPort{name: device, port: p}, nil
}

// Read returns 0, nil when the read timed out with no data.
func (s *SerialPort) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

func (s *SerialPort) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialPort) Close() error {
	return s.port.Close()
}

func (s *SerialPort) String() string {
	return s.name
}

// Pump copies bytes from src into dst until ctx is done or src fails. A
// zero-length read with no error is treated as an idle line.
func Pump(ctx context.Context, src io.Reader, dst io.Writer) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return fmt.Errorf("pump write: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("pump read: %w", err)
		}
	}
}
