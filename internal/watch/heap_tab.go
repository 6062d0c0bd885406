package watch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/memlab/internal/model"
	"github.com/mabhi256/memlab/internal/tui"
)

func (m *Model) renderHeapTab() string {
	snap := m.state.Snapshot
	heap := snap.Heap
	width := barWidth(m.width)

	soh := heap.SohPercentOfTotal()
	loh := heap.LargeObjectPercentOfTotal()
	poh := heap.PinnedObjectPercentOfTotal()

	segments := renderSection(fmt.Sprintf("Segments (%s committed)", heap.TotalCommitted()),
		"  "+tui.SegmentBar(width+labelWidth, []float64{soh.Value(), loh.Value(), poh.Value()},
			[]lipgloss.Color{tui.SohColor, tui.LohColor, tui.PohColor}),
		fmt.Sprintf("  %s soh %s  %s loh %s  %s poh %s",
			lipgloss.NewStyle().Foreground(tui.SohColor).Render(tui.FillChar), soh,
			lipgloss.NewStyle().Foreground(tui.LohColor).Render(tui.FillChar), loh,
			lipgloss.NewStyle().Foreground(tui.PohColor).Render(tui.FillChar), poh),
	)

	total := heap.TotalCommitted()
	var bars []tui.BarData
	for _, gen := range heap.Generations() {
		bars = append(bars, tui.BarData{
			Label:   gen.Generation.String(),
			Value:   gen.Size.String(),
			Percent: model.PercentFromRatio(gen.Size.Ratio(total)).Value(),
			Color:   tui.SohColor,
		})
	}
	bars = append(bars,
		tui.BarData{Label: heap.LargeObject.Kind.String(), Value: heap.LargeObject.Size.String(), Percent: loh.Value(), Color: tui.LohColor},
		tui.BarData{Label: heap.PinnedObject.Kind.String(), Value: heap.PinnedObject.Size.String(), Percent: poh.Value(), Color: tui.PohColor},
	)
	config := tui.DefaultBarConfig(width)
	chart := tui.CreateHorizontalBarChart("Generations", bars, config)

	var collections []string
	for _, gen := range heap.Generations() {
		collections = append(collections, fmt.Sprintf("%s %d", gen.Generation, snap.GC.Collections(gen.Generation)))
	}

	gc := renderSection("Collector",
		renderRow("Collections", strings.Join(collections, "  ")),
		renderRow("Heap size", snap.GC.TotalHeap.String()),
		renderRow("GC committed", snap.GC.TotalCommitted.String()),
		renderRow("Fragmented", snap.FragmentedBytes().String()),
		renderRow("Time in GC", snap.GC.TimeInGCPercent.String()),
	)

	return joinBlocks(segments, chart, gc)
}
