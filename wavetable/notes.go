package wavetable

import "fmt"

// NumNotes covers C0..B8.
const NumNotes = 108

var noteNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// noteHz is the equal-tempered pitch of each note, C0 first, rounded to
// two decimals.
var noteHz = [NumNotes]float64{
	16.35, 17.32, 18.35, 19.45, 20.60, 21.83, 23.12, 24.50, 25.96, 27.50, 29.14, 30.87,
	32.70, 34.65, 36.71, 38.89, 41.20, 43.65, 46.25, 49.00, 51.91, 55.00, 58.27, 61.74,
	65.41, 69.30, 73.42, 77.78, 82.41, 87.31, 92.50, 98.00, 103.83, 110.00, 116.54, 123.47,
	130.81, 138.59, 146.83, 155.56, 164.81, 174.61, 185.00, 196.00, 207.65, 220.00, 233.08, 246.94,
	261.63, 277.18, 293.66, 311.13, 329.63, 349.23, 369.99, 392.00, 415.30, 440.00, 466.16, 493.88,
	523.25, 554.37, 587.33, 622.25, 659.25, 698.46, 739.99, 783.99, 830.61, 880.00, 932.33, 987.77,
	1046.50, 1108.73, 1174.66, 1244.51, 1318.51, 1396.91, 1479.98, 1567.98, 1661.22, 1760.00, 1864.66, 1975.53,
	2093.00, 2217.46, 2349.32, 2489.02, 2637.02, 2793.83, 2959.96, 3135.96, 3322.44, 3520.00, 3729.31, 3951.07,
	4186.01, 4434.92, 4698.63, 4978.03, 5274.04, 5587.65, 5919.91, 6271.93, 6644.88, 7040.00, 7458.62, 7902.13,
}

// Note indexes the frequency table, 0 = C0.
type Note uint8

// FromMIDI maps a MIDI note number onto the table. Note numbers index the
// table directly: 0 is C0, 57 is A4, 107 is B8. ok is false above B8.
func FromMIDI(midiNote uint8) (n Note, ok bool) {
	if int(midiNote) >= NumNotes {
		return 0, false
	}
	return Note(midiNote), true
}

// Hz returns the note's pitch.
func (n Note) Hz() float64 {
	return noteHz[n]
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", noteNames[n%12], n/12)
}

// Increments maps every note to a phase increment: table indices advanced
// per sample to play that pitch.
type Increments [NumNotes]float64

// NewIncrements computes tableLen * hz / sampleRate for every note. With a
// 160-sample table at 16 kHz, A4 advances 4.4 indices per sample.
func NewIncrements(tableLen, sampleRate int) *Increments {
	var inc Increments
	for i, hz := range noteHz {
		inc[i] = PhaseIncrement(hz, tableLen, sampleRate)
	}
	return &inc
}

// PhaseIncrement converts a frequency into table indices per sample.
func PhaseIncrement(hz float64, tableLen, sampleRate int) float64 {
	return float64(tableLen) * hz / float64(sampleRate)
}

// For returns the increment of n.
func (inc *Increments) For(n Note) float64 {
	return inc[n]
}
