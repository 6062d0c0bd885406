package watch

import (
	"fmt"
	"strconv"

	"github.com/mabhi256/memlab/internal/tui"
)

func (m *Model) renderThreadsTab() string {
	threads := m.state.Snapshot.Threads

	summary := renderSection("Threads",
		renderRow("Total", strconv.Itoa(threads.TotalThreads)),
		renderRow("Listed", strconv.Itoa(len(threads.Threads))),
		renderRow("Stack reserve", threads.EstimatedTotalStackReserve().String()+" (estimated)"),
	)

	if len(threads.Threads) == 0 {
		return joinBlocks(summary, tui.MutedStyle.Render("  thread listing disabled or unavailable"))
	}

	lines := []string{tui.MutedStyle.Render(fmt.Sprintf("  %-10s %-12s %-8s %s", "ID", "RESERVE", "DEPTH", "ROLE"))}
	for _, th := range threads.Threads {
		depth := "-"
		if th.CallDepth != nil {
			depth = strconv.Itoa(*th.CallDepth)
		}
		role := ""
		if th.IsUIThread {
			role = tui.InfoStyle.Render("main")
		}
		lines = append(lines, fmt.Sprintf("  %-10d %-12s %-8s %s", th.ID, th.StackReserve, depth, role))
	}

	return joinBlocks(summary, renderSection("Listed threads", lines...))
}
