package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI status bytes (channel in the low nibble)
const (
	NoteOff uint8 = 0x80
	NoteOn  uint8 = 0x90

	StatusMask  uint8 = 0xF0
	ChannelMask uint8 = 0x0F
	DataMask    uint8 = 0x7F

	statusBit   uint8 = 0x80
	realtimeMin uint8 = 0xF8 // 0xF8-0xFF may interleave with any message
)

// IsNoteStatus reports whether b is a Note On or Note Off status byte on any
// channel.
func IsNoteStatus(b byte) bool {
	t := b & StatusMask
	return t == NoteOn || t == NoteOff
}

// Event is one complete Note On or Note Off message.
type Event struct {
	Status uint8    // message type + channel
	Data   [2]uint8 // note number, velocity
}

func (e Event) Type() uint8     { return e.Status & StatusMask }
func (e Event) Channel() uint8  { return e.Status & ChannelMask }
func (e Event) Note() uint8     { return e.Data[0] }
func (e Event) Velocity() uint8 { return e.Data[1] }

// IsNoteOn is true for a Note On with non-zero velocity.
func (e Event) IsNoteOn() bool {
	return e.Type() == NoteOn && e.Velocity() > 0
}

// IsNoteOff is true for Note Off and for Note On with velocity 0.
func (e Event) IsNoteOff() bool {
	return e.Type() == NoteOff || (e.Type() == NoteOn && e.Velocity() == 0)
}

// Bytes returns the three wire bytes of the event.
func (e Event) Bytes() []byte {
	return []byte{e.Status, e.Data[0], e.Data[1]}
}

// Message converts the event for the gomidi helpers.
func (e Event) Message() gomidi.Message {
	return gomidi.Message(e.Bytes())
}

func (e Event) String() string {
	return e.Message().String()
}

// NewNoteOn builds a Note On event; channel is 0-15.
func NewNoteOn(channel, note, velocity uint8) Event {
	return Event{Status: NoteOn | channel&ChannelMask, Data: [2]uint8{note & DataMask, velocity & DataMask}}
}

// NewNoteOff builds a Note Off event; channel is 0-15.
func NewNoteOff(channel, note, velocity uint8) Event {
	return Event{Status: NoteOff | channel&ChannelMask, Data: [2]uint8{note & DataMask, velocity & DataMask}}
}
