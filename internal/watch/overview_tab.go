package watch

import (
	"fmt"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	"github.com/charmbracelet/lipgloss"

	"github.com/mabhi256/memlab/internal/model"
	"github.com/mabhi256/memlab/internal/tui"
	"github.com/mabhi256/memlab/utils"
)

const sparklineHeight = 6

func (m *Model) renderOverviewTab() string {
	snap := m.headline
	width := barWidth(m.width)

	managed := snap.TotalManagedCommitted()
	managedShare := managed.Ratio(snap.Process.WorkingSet)

	process := renderSection("Process",
		renderRow("Working set", snap.Process.WorkingSet.String()),
		renderRow("Private bytes", snap.Process.PrivateBytes.String()),
		renderRow("Virtual memory", snap.Process.VirtualMemory.String()),
		renderRow("Threads", fmt.Sprintf("%d", snap.Process.ThreadCount)),
	)

	managedHeap := renderSection("Managed heap",
		renderRow("Total committed", managed.String()),
		fmt.Sprintf("  %-*s %s %s", labelWidth, "Share of RSS:",
			tui.CreateProgressBar(managedShare, width, tui.UsageColor(managedShare)),
			tui.MutedStyle.Render(model.PercentFromRatio(managedShare).String())),
		fmt.Sprintf("  %-*s %s %s", labelWidth, "Time in GC:",
			tui.CreateProgressBar(snap.GC.TimeInGCPercent.Ratio(), width, gcColor(snap.GC.TimeInGCPercent)),
			tui.MutedStyle.Render(snap.GC.TimeInGCPercent.String())),
		renderRow("Allocated", model.BytesFromUint64(snap.GC.TotalAllocatedBytes).String()),
		renderRow("Fragmented", snap.FragmentedBytes().String()),
	)

	return joinBlocks(process, managedHeap, m.renderHistory())
}

// renderHistory draws the managed total history, oldest on the left.
func (m *Model) renderHistory() string {
	history := m.state.Chronological()
	title := fmt.Sprintf("Total managed history (%d/%d samples)", len(history), m.state.HistoryCapacity)
	if len(history) == 0 {
		return renderSection(title, tui.MutedStyle.Render("  waiting for samples"))
	}

	values := make([]float64, len(history))
	for i, v := range history {
		values[i] = float64(v)
	}

	chartWidth := min(max(m.width-4, 10), max(len(values), 10))
	chart := sparkline.New(chartWidth, sparklineHeight,
		sparkline.WithStyle(lipgloss.NewStyle().Foreground(tui.InfoColor)))
	chart.PushAll(values)
	chart.Draw()

	perSecond, correlation := utils.CalculateTrend(history, m.opts.Metrics.ProcessPollInterval)
	summary := utils.Summarize(history)

	trendStyle := tui.GoodStyle
	if perSecond > 0 && correlation > 0.8 {
		trendStyle = tui.WarningStyle
	}

	return renderSection(title,
		chart.View(),
		fmt.Sprintf("  Trend %s (r=%.2f)  min %s  max %s  mean %s  stddev %s",
			trendStyle.Render(formatRate(perSecond)),
			correlation,
			model.ClampBytes(summary.Min),
			model.ClampBytes(summary.Max),
			model.ClampBytes(summary.Mean),
			model.ClampBytes(summary.StdDev())),
	)
}
