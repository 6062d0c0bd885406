package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultLabelWidth = 10
	MinBarWidth       = 1
)

// BarData is one labelled row of a horizontal bar chart.
type BarData struct {
	Label   string
	Value   string  // preformatted, e.g. "12.0 MB"
	Percent float64 // 0..100
	Color   lipgloss.Color
}

type HorizontalBarConfig struct {
	BarAreaWidth int
	LabelWidth   int
	ShowPercent  bool
}

func DefaultBarConfig(barAreaWidth int) HorizontalBarConfig {
	return HorizontalBarConfig{
		BarAreaWidth: max(barAreaWidth, MinBarWidth),
		LabelWidth:   DefaultLabelWidth,
		ShowPercent:  true,
	}
}

// CreateHorizontalBar renders "Label │████░░░│ Value (Percent)".
func CreateHorizontalBar(data BarData, config HorizontalBarConfig) string {
	bar := CreateProgressBar(data.Percent/100, config.BarAreaWidth, data.Color)

	value := data.Value
	if config.ShowPercent {
		value = strings.TrimSpace(fmt.Sprintf("%s (%4.1f%%)", data.Value, data.Percent))
	}

	return fmt.Sprintf("%-*s │%s│ %s", config.LabelWidth, data.Label, bar, value)
}

func CreateHorizontalBarChart(title string, bars []BarData, config HorizontalBarConfig) string {
	var lines []string
	if title != "" {
		lines = append(lines, TitleStyle.Render(title), "")
	}
	for _, bar := range bars {
		lines = append(lines, CreateHorizontalBar(bar, config))
	}
	return strings.Join(lines, "\n")
}

// SegmentBar renders stacked proportions on a single row. Segments with a
// non-zero share always get at least one cell.
func SegmentBar(width int, percents []float64, colors []lipgloss.Color) string {
	if width <= 0 || len(percents) == 0 {
		return ""
	}

	cells := make([]int, len(percents))
	used := 0
	for i, p := range percents {
		if p <= 0 {
			continue
		}
		cells[i] = max(1, int(p/100*float64(width)))
		used += cells[i]
	}
	// Trim overflow from the widest segment.
	for used > width {
		widest := 0
		for i := range cells {
			if cells[i] > cells[widest] {
				widest = i
			}
		}
		cells[widest]--
		used--
	}

	var b strings.Builder
	for i, n := range cells {
		if n == 0 {
			continue
		}
		segment := strings.Repeat(FillChar, n)
		if i < len(colors) && colors[i] != "" {
			segment = lipgloss.NewStyle().Foreground(colors[i]).Render(segment)
		}
		b.WriteString(segment)
	}
	b.WriteString(strings.Repeat(EmptyChar, width-used))
	return b.String()
}
