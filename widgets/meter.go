package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-wavesynth/theme"
)

// Meter returns a bar of width cells with value/limit of them filled.
func Meter(value, limit, width int, full, empty rune) string {
	if limit <= 0 || width <= 0 {
		return strings.Repeat(string(empty), max(width, 0))
	}
	n := min(max(value, 0)*width/limit, width)
	return strings.Repeat(string(full), n) + strings.Repeat(string(empty), width-n)
}

// RenderMeter renders "label ████░░░░ value/limit", warning-colored when full.
func RenderMeter(label string, value, limit, width int, th *theme.Theme) string {
	color := th.Accent()
	if value >= limit {
		color = th.Warning()
	}
	bar := lipgloss.NewStyle().Foreground(color).
		Render(Meter(value, limit, width, th.Symbols.MeterFull, th.Symbols.MeterEmpty))
	return fmt.Sprintf("%-8s %s %d/%d", label, bar, value, limit)
}
