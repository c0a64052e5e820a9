package midi

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-wavesynth/debug"
)

// DeviceEvent is emitted when host inputs connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug of host MIDI inputs. Every input whose name
// contains the match string (all inputs when empty) is forwarded to sink.
type DeviceManager struct {
	match    string
	sink     io.Writer
	inputs   map[string]*PortInput
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceManager creates a new device manager
func NewDeviceManager(match string, sink io.Writer) *DeviceManager {
	return &DeviceManager{
		match:    strings.ToLower(match),
		sink:     sink,
		inputs:   make(map[string]*PortInput),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Inputs returns the IDs of the connected inputs
func (dm *DeviceManager) Inputs() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.inputs))
	for id := range dm.inputs {
		ids = append(ids, id)
	}
	return ids
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) matches(name string) bool {
	return dm.match == "" || strings.Contains(strings.ToLower(name), dm.match)
}

func (dm *DeviceManager) scan() {
	// Port listing can hang on some backends, so bound it.
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("port", "port scan timed out")
		return
	}

	seen := make(map[string]bool)
	for _, inPort := range inPorts {
		id := inPort.String()
		if !dm.matches(id) {
			continue
		}
		seen[id] = true

		dm.mu.RLock()
		_, exists := dm.inputs[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		in, err := NewPortInput(id, inPort, dm.sink)
		if err != nil {
			debug.Log("port", "connect %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.inputs[id] = in
		dm.mu.Unlock()
		debug.Log("port", "connected %s", id)
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, in := range dm.inputs {
		if !seen[id] {
			in.Close()
			delete(dm.inputs, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		debug.Log("port", "disconnected %s", id)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, in := range dm.inputs {
		in.Close()
	}
	dm.inputs = make(map[string]*PortInput)
}
