package sequencer

// StepsPerBeat is the pattern resolution: sixteenth notes.
const StepsPerBeat = 4

// Step is the notes that start on one step. An empty step is a rest.
type Step struct {
	Notes    []uint8
	Velocity uint8
}

// Pattern is a looped sequence of steps.
type Pattern struct {
	Name  string
	Steps []Step
}

func notes(velocity uint8, ns ...uint8) Step {
	return Step{Notes: ns, Velocity: velocity}
}

var rest = Step{}

// Patterns are the built-in bench patterns.
var Patterns = []Pattern{
	{
		Name: "arp",
		Steps: []Step{
			notes(110, 48), notes(80, 52), notes(90, 55), notes(80, 60),
			notes(110, 55), notes(80, 52), notes(90, 48), rest,
		},
	},
	{
		// One note per octave across the table, C0 to C8.
		Name: "sweep",
		Steps: []Step{
			notes(100, 0), notes(100, 12), notes(100, 24), notes(100, 36),
			notes(100, 48), notes(100, 60), notes(100, 72), notes(100, 84),
			notes(100, 96), rest, rest, rest,
		},
	},
	{
		// Chords wider than the voice count, so voices get stolen.
		Name: "chords",
		Steps: []Step{
			notes(100, 36, 40, 43, 48, 52), rest, rest, rest,
			notes(100, 41, 45, 48, 53, 57), rest, rest, rest,
			notes(100, 43, 47, 50, 55, 59), rest, rest, rest,
			notes(127, 36, 43, 48, 52, 55, 60), rest, rest, rest,
		},
	},
	{
		// Every step is as many events as the default queue holds.
		Name: "burst",
		Steps: []Step{
			notes(90, 48, 49, 50, 51, 52, 53, 54, 55, 56, 57), rest,
		},
	},
}

// Len returns the step count.
func (p Pattern) Len() int {
	return len(p.Steps)
}

// At returns the step at position i, looping.
func (p Pattern) At(i int) Step {
	if len(p.Steps) == 0 {
		return rest
	}
	return p.Steps[i%len(p.Steps)]
}
