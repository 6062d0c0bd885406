package watch

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/memlab/internal/config"
	"github.com/mabhi256/memlab/internal/model"
	"github.com/mabhi256/memlab/internal/sampling"
	"github.com/mabhi256/memlab/internal/state"
)

func testOptions() Options {
	return Options{
		Metrics: config.MetricsConfig{
			ProcessPollInterval: time.Second,
			HistoryPoints:       5,
			UiMinRelativeChange: 0.05,
		},
		Target: "pid 42",
	}
}

func snapshotWith(workingSet, gen0 model.ByteSize) model.MemorySnapshot {
	return model.MemorySnapshot{
		Timestamp: time.Unix(1700000000, 0),
		Process: model.ProcessMemory{
			WorkingSet:    workingSet,
			PrivateBytes:  workingSet / 2,
			VirtualMemory: workingSet * 4,
			ThreadCount:   3,
		},
		Heap: model.HeapBreakdown{
			Gen0:        model.GenerationStats{Generation: model.Gen0, Size: gen0},
			Gen2:        model.GenerationStats{Generation: model.Gen2, Size: 3 * model.MB},
			LargeObject: model.SegmentStats{Kind: model.LargeObject, Size: model.MB},
		},
		GC: model.GcStats{Gen0Collections: 7, TimeInGCPercent: model.NewPercent(2.5)},
		Threads: model.ThreadsSnapshot{
			TotalThreads: 3,
			Threads: []model.ThreadInfo{
				{ID: 1, StackReserve: 8 * model.MB, IsUIThread: true},
				{ID: 2, StackReserve: 8 * model.MB},
			},
		},
	}
}

func project(prev state.UiState, snap model.MemorySnapshot) state.UiState {
	next := prev
	next.Snapshot = snap
	return next.WithPushedManaged(snap.TotalManagedCommitted())
}

func sized(m *Model, w, h int) *Model {
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return m
}

func TestModel_ApplyStateRefreshesHeadlineOnSignificantChange(t *testing.T) {
	m := NewModel(testOptions())

	s1 := project(state.NewUiState(model.MemorySnapshot{}, 5), snapshotWith(100*model.MB, model.MB))
	m.applyState(s1)
	assert.Equal(t, 1, m.headlineRefreshes)
	assert.Equal(t, 100*model.MB, m.headline.Process.WorkingSet)

	// 1% change stays below the 5% threshold; state still advances.
	s2 := project(s1, snapshotWith(101*model.MB, model.MB))
	m.applyState(s2)
	assert.Equal(t, 1, m.headlineRefreshes)
	assert.Equal(t, 100*model.MB, m.headline.Process.WorkingSet)
	assert.Equal(t, 101*model.MB, m.state.Snapshot.Process.WorkingSet)
	assert.Len(t, m.state.TotalManagedHistory, 2)

	s3 := project(s2, snapshotWith(120*model.MB, model.MB))
	m.applyState(s3)
	assert.Equal(t, 2, m.headlineRefreshes)
	assert.Equal(t, 120*model.MB, m.headline.Process.WorkingSet)
	assert.Equal(t, 3, m.updateCount)
}

func TestModel_DispatchMsgRunsWorkOnUpdate(t *testing.T) {
	m := NewModel(testOptions())
	ran := false

	_, cmd := m.Update(dispatchMsg(func() { ran = true }))

	assert.True(t, ran)
	assert.Nil(t, cmd)
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs = append(r.msgs, msg)
}

func TestProgramDispatcher_SendsWorkAsMessage(t *testing.T) {
	rec := &recordingSender{}
	d := &ProgramDispatcher{program: rec}
	m := NewModel(testOptions())

	var got []state.UiState
	d.Dispatch(func() { got = append(got, state.UiState{HistoryCapacity: 9}) })
	assert.Empty(t, got, "work must not run on the caller")

	require.Len(t, rec.msgs, 1)
	m.Update(rec.msgs[0])
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].HistoryCapacity)
}

func TestModel_TabNavigation(t *testing.T) {
	m := NewModel(testOptions())

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabHeap, m.activeTab)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, TabThreads, m.activeTab)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, TabOverview, m.activeTab)
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, TabThreads, m.activeTab)
}

func TestModel_QuitKey(t *testing.T) {
	m := NewModel(testOptions())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_ViewBeforeFirstSample(t *testing.T) {
	m := NewModel(testOptions())
	assert.Empty(t, m.View(), "no size yet")

	sized(m, 100, 30)
	view := m.View()
	assert.Contains(t, view, "memlab watch - pid 42")
	assert.Contains(t, view, "Waiting for the first sample")
}

func TestModel_ViewRendersEveryTab(t *testing.T) {
	opts := testOptions()
	opts.Stats = func() sampling.Stats { return sampling.Stats{Ticks: 4, Failures: 1} }
	m := sized(NewModel(opts), 120, 80)

	s := state.NewUiState(model.MemorySnapshot{}, 5)
	for i := 1; i <= 4; i++ {
		s = project(s, snapshotWith(100*model.MB, model.ByteSize(i)*model.MB))
		m.applyState(s)
	}

	overview := m.View()
	assert.Contains(t, overview, "Working set")
	assert.Contains(t, overview, "100M")
	assert.Contains(t, overview, "Total managed history (4/5 samples)")
	assert.Contains(t, overview, "Trend +")
	assert.Contains(t, overview, "1 failed reads")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	heap := m.View()
	assert.Contains(t, heap, "Generations")
	assert.Contains(t, heap, "gen0")
	assert.Contains(t, heap, "loh")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	threads := m.View()
	assert.Contains(t, threads, "Stack reserve")
	assert.Contains(t, threads, "16M")
	assert.Contains(t, threads, "main")
}

func TestModel_ScrollingClampsToContent(t *testing.T) {
	m := NewModel(testOptions())
	content := strings.Repeat("line\n", 19) + "line"

	m.scrollDown(100)
	out := m.applyScrolling(content, 5)
	assert.Equal(t, 15, m.scrollPositions[TabOverview])
	assert.Contains(t, out, "(Line 16-20 of 20)")

	m.scrollUp(100)
	assert.Equal(t, 0, m.scrollPositions[TabOverview])
	assert.Equal(t, "ab", m.applyScrolling("ab", 5))
}
