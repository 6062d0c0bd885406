package watch

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mabhi256/memlab/utils"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		msg()
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case TickMsg:
		// Keeps the uptime in the header moving between samples.
		return m, scheduleTick()

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollUp(1)
		case tea.MouseButtonWheelDown:
			m.scrollDown(1)
		}
	}

	return m, nil
}

func (m *Model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Right):
		m.activeTab = utils.GetNextEnum(m.activeTab, lastTab)

	case key.Matches(msg, keys.Left):
		m.activeTab = utils.GetPrevEnum(m.activeTab, lastTab)

	case key.Matches(msg, keys.Up):
		m.scrollUp(1)

	case key.Matches(msg, keys.Down):
		m.scrollDown(1)

	case key.Matches(msg, keys.PageUp):
		m.scrollUp(max(m.height/2, 1))

	case key.Matches(msg, keys.PageDown):
		m.scrollDown(max(m.height/2, 1))

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}
