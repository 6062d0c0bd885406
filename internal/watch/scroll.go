package watch

import (
	"fmt"
	"strings"

	"github.com/mabhi256/memlab/internal/tui"
)

// applyScrolling clips content to the viewport of the active tab.
func (m *Model) applyScrolling(content string, viewportHeight int) string {
	viewportHeight = max(viewportHeight, 1)
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	if totalLines <= viewportHeight {
		return content
	}

	maxScroll := totalLines - viewportHeight
	scrollPos := min(max(m.scrollPositions[m.activeTab], 0), maxScroll)
	m.scrollPositions[m.activeTab] = scrollPos

	endPos := scrollPos + viewportHeight
	visibleLines := lines[scrollPos:endPos]

	// The last visible line becomes the position indicator.
	visibleLines[len(visibleLines)-1] = fmt.Sprintf("%s (Line %d-%d of %d) %s",
		tui.MutedStyle.Render("▲"),
		scrollPos+1,
		endPos,
		totalLines,
		tui.MutedStyle.Render("▼"))

	return strings.Join(visibleLines, "\n")
}

func (m *Model) scrollUp(lines int) {
	m.scrollPositions[m.activeTab] = max(m.scrollPositions[m.activeTab]-lines, 0)
}

func (m *Model) scrollDown(lines int) {
	// Clamped against content height in applyScrolling.
	m.scrollPositions[m.activeTab] += lines
}
