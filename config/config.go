package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go-wavesynth/midi"
	"go-wavesynth/synth"
	"go-wavesynth/wavetable"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// SerialConfig describes the serial MIDI link
type SerialConfig struct {
	Device string `json:"device,omitempty"` // empty = no serial input
	Baud   int    `json:"baud,omitempty"`   // 0 = MIDI rate
	Echo   bool   `json:"echo"`             // pass received bytes back out
}

// Rate returns the effective baud rate, the MIDI rate when Baud is 0.
func (s SerialConfig) Rate() int {
	if s.Baud == 0 {
		return midi.BaudRate
	}
	return s.Baud
}

// AudioConfig controls the host sound card sink
type AudioConfig struct {
	Enabled bool   `json:"enabled"`
	Record  string `json:"record,omitempty"` // WAV path for converter output
}

// UIConfig stores monitor preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file, built-in when empty
}

// Config is the main configuration structure
type Config struct {
	SampleRate         int    `json:"sampleRate"`
	ReferenceFrequency int    `json:"referenceFrequency"` // one stored cycle, Hz
	SystemClockHz      int    `json:"systemClockHz"`
	QueueCapacity      int    `json:"queueCapacity"`
	Voices             int    `json:"voices"`
	Waveform           string `json:"waveform"`

	Serial   SerialConfig `json:"serial,omitempty"`
	MIDIPort string       `json:"midiPort,omitempty"` // host input name filter
	Audio    AudioConfig  `json:"audio,omitempty"`
	UI       UIConfig     `json:"ui,omitempty"`
	Debug    bool         `json:"debug,omitempty"`

	DebugCategories []string `json:"debugCategories,omitempty"` // empty logs all
}

// DefaultConfig returns the reference board settings: 16 kHz output, 100 Hz
// table cycle (160 samples), 16 MHz system clock, ten queued events.
func DefaultConfig() *Config {
	return &Config{
		SampleRate:         16000,
		ReferenceFrequency: 100,
		SystemClockHz:      16000000,
		QueueCapacity:      10,
		Voices:             4,
		Waveform:           "sine",
		Serial: SerialConfig{
			Baud: 31250,
			Echo: true,
		},
		Audio: AudioConfig{
			Enabled: true,
		},
	}
}

// Validate checks the values the signal path depends on.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sampleRate %d", ErrInvalid, c.SampleRate)
	case c.ReferenceFrequency <= 0 || c.ReferenceFrequency > c.SampleRate/2:
		return fmt.Errorf("%w: referenceFrequency %d", ErrInvalid, c.ReferenceFrequency)
	case c.SystemClockHz < c.SampleRate:
		return fmt.Errorf("%w: systemClockHz %d below sample rate", ErrInvalid, c.SystemClockHz)
	case c.QueueCapacity <= 0 || c.QueueCapacity > 255:
		return fmt.Errorf("%w: queueCapacity %d", ErrInvalid, c.QueueCapacity)
	case c.Voices <= 0 || c.Voices > synth.MaxVoices:
		return fmt.Errorf("%w: voices %d (1-%d)", ErrInvalid, c.Voices, synth.MaxVoices)
	case c.Serial.Baud < 0:
		return fmt.Errorf("%w: baud %d", ErrInvalid, c.Serial.Baud)
	}
	if _, err := wavetable.ParseShape(c.Waveform); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Shape returns the configured start-up waveform, sine if unset.
func (c *Config) Shape() wavetable.Shape {
	s, err := wavetable.ParseShape(c.Waveform)
	if err != nil {
		return wavetable.Sine
	}
	return s
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-wavesynth"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file. Fields missing from the file keep their
// defaults; a missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Serial.Baud = cfg.Serial.Rate()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
