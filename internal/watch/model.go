package watch

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mabhi256/memlab/internal/config"
	"github.com/mabhi256/memlab/internal/model"
	"github.com/mabhi256/memlab/internal/sampling"
	"github.com/mabhi256/memlab/internal/state"
)

// Options configures the watch view.
type Options struct {
	Metrics config.MetricsConfig
	// Target names the observed process in the header.
	Target string
	// Stats, when set, reports sampling loop counters in the header.
	Stats func() sampling.Stats
}

// Model is the bubbletea model for `memlab watch`.
type Model struct {
	opts Options
	help help.Model

	width           int
	height          int
	activeTab       TabType
	scrollPositions map[TabType]int

	// state always holds the newest projection; headline only moves on a
	// significant change.
	state       state.UiState
	hasState    bool
	headline    model.MemorySnapshot
	hasHeadline bool

	updateCount       int
	headlineRefreshes int
	startTime         time.Time
}

type TickMsg time.Time

func NewModel(opts Options) *Model {
	return &Model{
		opts:            opts,
		help:            help.New(),
		activeTab:       TabOverview,
		scrollPositions: make(map[TabType]int),
		startTime:       time.Now(),
	}
}

// applyState is the UiState observer. It runs on the UI loop.
func (m *Model) applyState(s state.UiState) {
	m.state = s
	m.hasState = true
	m.updateCount++

	if !m.hasHeadline || headlineChanged(m.headline, s.Snapshot, m.opts.Metrics.UiMinRelativeChange) {
		m.headline = s.Snapshot
		m.hasHeadline = true
		m.headlineRefreshes++
	}
}

func (m *Model) Init() tea.Cmd {
	return scheduleTick()
}

func scheduleTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
