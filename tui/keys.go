package tui

// pianoKeys maps the home row onto one octave, tracker style: white keys on
// a s d f g h j k, black keys on the row above.
var pianoKeys = map[string]uint8{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

const (
	minOctave     = 0
	maxOctave     = 8
	defaultOctave = 4
	keyVelocity   = 100
)

// keyNote returns the MIDI note for key at octave, where octave 4 puts "a"
// on C4 (note 48). Notes past B8 are left to the engine to reject.
func keyNote(key string, octave int) (uint8, bool) {
	semi, ok := pianoKeys[key]
	if !ok {
		return 0, false
	}
	n := octave*12 + int(semi)
	if n > 127 {
		return 0, false
	}
	return uint8(n), true
}
