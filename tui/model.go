package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-wavesynth/audio"
	"go-wavesynth/clock"
	"go-wavesynth/midi"
	"go-wavesynth/sequencer"
	"go-wavesynth/synth"
	"go-wavesynth/theme"
	"go-wavesynth/wavetable"
	"go-wavesynth/widgets"
)

const (
	refreshRate = 50 * time.Millisecond
	noteLength  = 300 * time.Millisecond
	scopeWidth  = 64
	scopeHeight = 6
	scopeShown  = 128 // most recent samples drawn; pitch uses the whole capture
)

// Rig is the running signal path the monitor observes. Player, Recorder,
// Devices and Sequencer may be nil.
type Rig struct {
	Queue     *midi.Queue
	Receiver  *midi.Receiver
	UART      *midi.UART
	Engine    *synth.Engine
	Driver    *synth.Driver
	Clock     *clock.Clock
	Player    *audio.Player
	Recorder  *audio.Recorder
	Devices   *midi.DeviceManager
	Sequencer *sequencer.Player
	Port      string // serial device, empty when none
}

type Model struct {
	Rig      Rig
	Theme    *theme.Theme
	octave   int
	ports    []string
	held     map[uint8]int // notes sounding from the keyboard, by press count
	scope    []uint16
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

type refreshMsg struct{}

// releaseMsg ends a keyboard note after noteLength.
type releaseMsg struct{ note uint8 }

func NewModel(rig Rig, th *theme.Theme) Model {
	return Model{
		Rig:    rig,
		Theme:  th,
		octave: defaultOctave,
		held:   make(map[uint8]int),
		scope:  make([]uint16, 1024),
	}
}

func ListenForUpdates(engine *synth.Engine) tea.Cmd {
	return func() tea.Msg {
		<-engine.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshRate, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Rig.Engine), refresh()}
	if m.Rig.Devices != nil {
		cmds = append(cmds, ListenForDevices(m.Rig.Devices))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case releaseMsg:
		if m.held[msg.note]--; m.held[msg.note] <= 0 {
			delete(m.held, msg.note)
			m.send(midi.NewNoteOff(0, msg.note, 0))
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Rig.Engine)

	case refreshMsg:
		m.Rig.Driver.Scope(m.scope)
		return m, refresh()

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.ports = append(m.ports, event.ID)
		case midi.DeviceDisconnected:
			for i, id := range m.ports {
				if id == event.ID {
					m.ports = append(m.ports[:i:i], m.ports[i+1:]...)
					break
				}
			}
		}
		return m, ListenForDevices(m.Rig.Devices)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "1", "2", "3", "4":
		m.Rig.Engine.SetShape(wavetable.Shape(key[0] - '1'))

	case "tab":
		m.Rig.Engine.SetShape(m.Rig.Engine.Shape().Next())

	case "z":
		m.octave = max(m.octave-1, minOctave)

	case "x":
		m.octave = min(m.octave+1, maxOctave)

	case " ":
		if seq := m.Rig.Sequencer; seq != nil {
			seq.Stop()
		}
		m.Rig.Engine.AllOff()
		m.held = make(map[uint8]int)

	case "p", "+", "=", "-", "_", "n":
		m.sequencerKey(key)

	default:
		note, ok := keyNote(key, m.octave)
		if !ok {
			return m, nil
		}
		m.held[note]++
		m.send(midi.NewNoteOn(0, note, keyVelocity))
		return m, tea.Tick(noteLength, func(time.Time) tea.Msg {
			return releaseMsg{note: note}
		})
	}
	return m, nil
}

func (m Model) sequencerKey(key string) {
	seq := m.Rig.Sequencer
	if seq == nil {
		return
	}
	switch key {
	case "p":
		seq.Toggle()
	case "+", "=":
		seq.SetTempo(seq.Tempo() + 5)
	case "-", "_":
		seq.SetTempo(seq.Tempo() - 5)
	case "n":
		seq.NextPattern()
	}
}

// send injects ev into the receive path as raw bytes, the same way a serial
// or host port message arrives.
func (m Model) send(ev midi.Event) {
	m.Rig.UART.Write(ev.Bytes())
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	clk := m.Rig.Clock
	header := headerStyle.Render(fmt.Sprintf("go-wavesynth  %s  %dHz  oct:%d",
		m.Rig.Engine.Shape(), clk.Rate(), m.octave))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	if seq := m.Rig.Sequencer; seq != nil {
		step, playing, tempo := seq.GetState()
		playState := "STOP"
		if playing {
			playState = "PLAY"
		}
		out.WriteString(dimStyle.Render(fmt.Sprintf("  %s %s %3dbpm step:%02d",
			seq.Pattern().Name, playState, tempo, step)))
	}
	out.WriteString("\n\n")
	out.WriteString(m.voicesView())
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderScope(m.scope[len(m.scope)-scopeShown:], scopeWidth, scopeHeight, m.Theme))
	out.WriteString("\n")
	if hz := audio.DominantHz(m.scope, clk.Rate()); hz > 0 {
		out.WriteString(dimStyle.Render(fmt.Sprintf("pitch ~%.1fHz", hz)))
	}
	out.WriteString("\n\n")

	q := m.Rig.Queue
	out.WriteString(widgets.RenderMeter("queue", q.Len(), q.Cap(), 20, m.Theme))
	if d := q.Dropped(); d > 0 {
		out.WriteString(warnStyle.Render(fmt.Sprintf("  dropped %d", d)))
	}
	out.WriteString("\n")
	out.WriteString(m.countersView())
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.inputsView()))
	out.WriteString("\n\n")
	out.WriteString(widgets.RenderKeyLine(helpKeys, dimStyle))

	return out.String()
}

var helpKeys = []widgets.KeyBinding{
	{Key: "1-4/tab", Desc: "wave"},
	{Key: "a-k", Desc: "play"},
	{Key: "z/x", Desc: "octave"},
	{Key: "p", Desc: "pattern"},
	{Key: "n", Desc: "next"},
	{Key: "+/-", Desc: "tempo"},
	{Key: "space", Desc: "all off"},
	{Key: "q", Desc: "quit"},
}

func (m Model) voicesView() string {
	onStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	offStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	d := m.Rig.Driver
	lines := make([]string, d.Voices())
	for i := range lines {
		v := d.Voice(i).Settings()
		switch {
		case v == nil:
			lines[i] = offStyle.Render(fmt.Sprintf("%c %d  --", m.Theme.Symbols.VoiceOff, i))
		case v.Gate:
			lines[i] = onStyle.Render(fmt.Sprintf("%c %d  %-3s %8.2fHz  %-8s %s",
				m.Theme.Symbols.VoiceOn, i, v.Note, v.Note.Hz(), v.Shape,
				widgets.Meter(int(v.Level*100), 100, 10, m.Theme.Symbols.MeterFull, m.Theme.Symbols.MeterEmpty)))
		default:
			lines[i] = offStyle.Render(fmt.Sprintf("%c %d  %-3s", m.Theme.Symbols.VoiceOff, i, v.Note))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) countersView() string {
	rx := m.Rig.Receiver.Stats()
	drv := m.Rig.Driver.Stats()
	eng := m.Rig.Engine.Stats()
	clk := m.Rig.Clock

	lines := []string{
		fmt.Sprintf("rx       bytes %d  events %d  ignored %d  overrun %d",
			rx.Bytes, rx.Events, rx.Ignored, m.Rig.UART.Overruns()),
		fmt.Sprintf("voices   consumed %d  stolen %d  out of range %d",
			eng.Events, eng.Stolen, eng.OutOfRange),
		fmt.Sprintf("clock    ticks %d  overruns %d  skipped %d",
			clk.Ticks(), clk.Overruns(), clk.Skipped()),
		fmt.Sprintf("dac      last %4d  bus errors %d", drv.Last, drv.BusErrors),
	}
	if p := m.Rig.Player; p != nil {
		st := p.Stats()
		lines = append(lines, fmt.Sprintf("audio    buffered %d  overruns %d  underruns %d",
			st.Buffered, st.Overruns, st.Underruns))
	}
	if r := m.Rig.Recorder; r != nil {
		lines = append(lines, fmt.Sprintf("record   %.1fs", float64(r.Frames())/float64(m.Rig.Clock.Rate())))
	}
	return strings.Join(lines, "\n")
}

func (m Model) inputsView() string {
	var in []string
	if m.Rig.Port != "" {
		in = append(in, m.Rig.Port)
	}
	in = append(in, m.ports...)
	if len(in) == 0 {
		return "inputs: keyboard only"
	}
	return "inputs: " + strings.Join(in, ", ")
}
