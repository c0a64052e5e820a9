package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-wavesynth/theme"
)

// ScopeGrid lays samples (12-bit words) out as rows of glyphs, top row
// first. Each column shows one sample picked evenly across the input;
// glyphs are the partial-cell heights, lowest first.
func ScopeGrid(samples []uint16, width, height int, glyphs []rune) []string {
	steps := len(glyphs) - 1
	rows := make([][]rune, height)
	for r := range rows {
		rows[r] = []rune(strings.Repeat(string(glyphs[0]), width))
	}
	if len(samples) == 0 || width <= 0 || steps <= 0 {
		return runesToStrings(rows)
	}

	for col := 0; col < width; col++ {
		s := samples[col*len(samples)/width]
		level := int(s) * height * steps / 4095
		for r := 0; r < height; r++ {
			fill := level - r*steps
			switch {
			case fill <= 0:
				continue
			case fill > steps:
				fill = steps
			}
			rows[height-1-r][col] = glyphs[fill]
		}
	}
	return runesToStrings(rows)
}

func runesToStrings(rows [][]rune) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

// RenderScope draws an oscilloscope of converter output, hot colors at
// the top.
func RenderScope(samples []uint16, width, height int, th *theme.Theme) string {
	rows := ScopeGrid(samples, width, height, th.Symbols.Scope)
	for i, row := range rows {
		norm := 1 - float64(i)/float64(max(height, 1))
		rows[i] = lipgloss.NewStyle().Foreground(th.Color(norm)).Render(row)
	}
	return strings.Join(rows, "\n")
}
