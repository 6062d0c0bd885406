package watch

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/memlab/internal/model"
	"github.com/mabhi256/memlab/internal/tui"
)

const labelWidth = 18

func renderRow(label, value string) string {
	return fmt.Sprintf("  %-*s %s", labelWidth, label+":", tui.InfoStyle.Render(value))
}

func renderSection(title string, lines ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		append([]string{tui.TitleStyle.Render(title)}, lines...)...)
}

// formatRate renders a signed byte rate such as "+1.5 MB/s".
func formatRate(perSecond float64) string {
	sign := "+"
	if perSecond < 0 {
		sign = "-"
	}
	return sign + model.ClampBytes(math.Abs(perSecond)).String() + "/s"
}

// gcColor colors time-in-GC; a few percent is already notable.
func gcColor(p model.Percent) lipgloss.Color {
	switch {
	case p.Value() >= 20:
		return tui.CriticalColor
	case p.Value() >= 5:
		return tui.WarningColor
	default:
		return tui.GoodColor
	}
}

func barWidth(total int) int {
	return min(max(total-labelWidth-24, 10), 60)
}

func joinBlocks(blocks ...string) string {
	return strings.Join(blocks, "\n\n")
}
