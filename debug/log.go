// Package debug is a category logger for the parts of the synthesizer that
// cannot print: the receive path, the voice engine and the sample clock all
// run behind the monitor's alternate screen.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	out      io.Writer
	closer   io.Closer
	mu       sync.Mutex
	enabled  bool
	only     map[string]bool // nil logs every category
	counters = make(map[string]int)
)

// Enable starts debug logging to ~/.config/go-wavesynth/debug.log
func Enable() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("debug log: %w", err)
	}
	return EnableAt(filepath.Join(homeDir, ".config", "go-wavesynth", "debug.log"))
}

// EnableAt starts debug logging to path, truncating it.
func EnableAt(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	start(f, f)
	return nil
}

// EnableWriter logs to w until Disable.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	start(w, nil)
}

// start expects mu to be held.
func start(w io.Writer, c io.Closer) {
	out, closer = w, c
	enabled = true
	counters = make(map[string]int)
	write("debug", "=== Debug logging started ===")
}

// Only restricts logging to the named categories. No names logs everything.
func Only(categories ...string) {
	mu.Lock()
	defer mu.Unlock()
	if len(categories) == 0 {
		only = nil
		return
	}
	only = make(map[string]bool, len(categories))
	for _, c := range categories {
		only[c] = true
	}
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
	}
	out, closer = nil, nil
	enabled = false
}

// Enabled reports whether logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !wants(category) {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every n-th call with the same category and format.
// Use it on per-byte and per-sample paths.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !wants(category) {
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	if n > 1 && count%n != 0 {
		return
	}
	write(category, fmt.Sprintf(format, args...)+fmt.Sprintf(" (every %d, count=%d)", n, count))
}

// wants expects mu to be held.
func wants(category string) bool {
	return enabled && out != nil && (only == nil || only[category])
}

// write expects mu to be held.
func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
	if f, ok := out.(*os.File); ok {
		f.Sync() // flush immediately so we see logs even on crash
	}
}
