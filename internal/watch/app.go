package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/mabhi256/memlab/internal/broadcast"
	"github.com/mabhi256/memlab/internal/state"
	"github.com/mabhi256/memlab/internal/tui"
	"github.com/mabhi256/memlab/utils"
)

// StartTUI projects snapshots from source into a Store whose deliveries run
// on the bubbletea loop, and blocks until the user quits or ctx ends.
func StartTUI(ctx context.Context, source state.SnapshotSource, opts Options, logger zerolog.Logger) error {
	model := NewModel(opts)

	program := tea.NewProgram(
		model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	store := state.NewStore(source, NewProgramDispatcher(program), opts.Metrics.HistoryCapacity(), logger)
	defer store.Close()

	// Any replay runs here, before the program loop starts.
	sub := store.Subscribe(broadcast.ObserverFunc[state.UiState](model.applyState))
	defer sub.Close()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Debug().
		Int("updates", model.updateCount).
		Int("headline_refreshes", model.headlineRefreshes).
		Msg("watch view closed")
	return nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	header := m.renderHeader()
	tabBar := m.renderTabBar()
	helpView := m.help.View(keys)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(tabBar) - lipgloss.Height(helpView)
	contentHeight = max(contentHeight, 1)

	scrolledContent := m.applyScrolling(m.renderActiveTab(), contentHeight)
	content := lipgloss.NewStyle().Height(contentHeight).Render(scrolledContent)

	return lipgloss.JoinVertical(lipgloss.Left, header, tabBar, content, helpView)
}

func (m *Model) renderActiveTab() string {
	if !m.hasState {
		return tui.MutedStyle.Render("Waiting for the first sample...")
	}

	switch m.activeTab {
	case TabOverview:
		return m.renderOverviewTab()
	case TabHeap:
		return m.renderHeapTab()
	case TabThreads:
		return m.renderThreadsTab()
	default:
		return tui.CriticalStyle.Render("Unknown tab")
	}
}

func (m *Model) renderHeader() string {
	headerLine := m.getTitle() + " • " + m.getStatus()
	separatorLine := strings.Repeat("─", m.width)

	return lipgloss.JoinVertical(lipgloss.Left,
		tui.HeaderStyle.Width(m.width).Render(headerLine),
		tui.MutedStyle.Render(separatorLine),
	)
}

func (m *Model) getTitle() string {
	if m.opts.Target == "" {
		return "memlab watch"
	}
	return "memlab watch - " + m.opts.Target
}

func (m *Model) getStatus() string {
	uptime := utils.FormatDuration(time.Since(m.startTime).Truncate(time.Second))
	if !m.hasState {
		return tui.WarningStyle.Render("● Waiting • Up " + uptime)
	}

	status := fmt.Sprintf("● Live • %d updates • Up %s", m.updateCount, uptime)
	if m.opts.Stats != nil {
		stats := m.opts.Stats()
		if stats.Failures > 0 {
			return tui.WarningStyle.Render(fmt.Sprintf("%s • %d failed reads", status, stats.Failures))
		}
	}
	return tui.GoodStyle.Render(status)
}

func (m *Model) renderTabBar() string {
	var tabs []string

	for _, tab := range GetAllTabs() {
		if tab == m.activeTab {
			tabs = append(tabs, tui.TabActiveStyle.Render(tab.String()))
		} else {
			tabs = append(tabs, tui.TabInactiveStyle.Render(tab.String()))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
