package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-wavesynth/audio"
	"go-wavesynth/clock"
	"go-wavesynth/config"
	"go-wavesynth/dac"
	"go-wavesynth/debug"
	"go-wavesynth/midi"
	"go-wavesynth/sequencer"
	"go-wavesynth/synth"
	"go-wavesynth/theme"
	"go-wavesynth/tui"
	"go-wavesynth/wavetable"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		debug.Only(cfg.DebugCategories...)
		defer debug.Disable()
	}

	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serial MIDI line: received bytes feed the parser, which echoes them back out.
	var port *midi.SerialPort
	var echo io.Writer
	if cfg.Serial.Device != "" {
		baud := cfg.Serial.Rate()
		port, err = midi.OpenSerial(cfg.Serial.Device, baud)
		if err != nil {
			return err
		}
		defer port.Close()
		if cfg.Serial.Echo {
			echo = port
		}
		debug.Log("config", "serial %s at %d baud (divisor %d)",
			port, baud, clock.BaudDivisor(cfg.SystemClockHz, baud))
	}

	// Receive path
	queue := midi.NewQueue(cfg.QueueCapacity)
	recv := midi.NewReceiver(queue, echo)
	uart := midi.NewUART(recv, 256)

	// Converter output: the frame decoder stands in for the chip and forwards
	// every sample to the sound card.
	var player *audio.Player
	if cfg.Audio.Enabled {
		player, err = audio.NewPlayer(cfg.SampleRate)
		if err != nil {
			return err
		}
		defer player.Close()
		player.Start()
	}
	var recorder *audio.Recorder
	if cfg.Audio.Record != "" {
		recorder, err = audio.NewRecorder(cfg.Audio.Record, cfg.SampleRate)
		if err != nil {
			return err
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
		}()
	}
	chip := dac.NewDecoder(func(ctrl dac.Control, sample uint16) {
		if !ctrl.Active {
			return
		}
		if player != nil {
			player.Push(sample)
		}
		if recorder != nil {
			recorder.Push(sample)
		}
	})
	conv := dac.NewConverter(chip, chip, dac.DefaultControl)

	// Synthesis
	tableLen := wavetable.Length(cfg.SampleRate, cfg.ReferenceFrequency)
	bank := wavetable.NewBank(tableLen)
	driver, err := synth.NewDriver(bank, cfg.Voices, conv)
	if err != nil {
		return err
	}
	engine := synth.NewEngine(queue, driver, wavetable.NewIncrements(tableLen, cfg.SampleRate), cfg.Shape())
	clk := clock.New(cfg.SampleRate)
	debug.Log("config", "%d Hz, table %d samples, timer divisor %d",
		cfg.SampleRate, tableLen, clock.Divisor(cfg.SystemClockHz, cfg.SampleRate))

	seq := sequencer.NewPlayer(uart, 0)

	go uart.Run(ctx)
	go engine.Run(ctx)
	go clk.Run(ctx, driver.Tick)
	go seq.Run(ctx)
	if port != nil {
		go func() {
			if err := midi.Pump(ctx, port, uart); err != nil {
				debug.Log("port", "serial: %v", err)
			}
		}()
	}

	// Host MIDI inputs (hot-plug) feed the same receive path
	deviceMgr := midi.NewDeviceManager(cfg.MIDIPort, uart)
	go deviceMgr.Run(ctx)

	rig := tui.Rig{
		Queue:     queue,
		Receiver:  recv,
		UART:      uart,
		Engine:    engine,
		Driver:    driver,
		Clock:     clk,
		Player:    player,
		Recorder:  recorder,
		Devices:   deviceMgr,
		Sequencer: seq,
	}
	if port != nil {
		rig.Port = port.String()
	}

	m := tui.NewModel(rig, th)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
