package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mabhi256/memlab/internal/model"
)

func TestSignificantChange(t *testing.T) {
	tests := []struct {
		name       string
		prev, next float64
		minRel     float64
		want       bool
	}{
		{"unchanged", 100, 100, 0.01, false},
		{"below threshold", 100, 100.5, 0.01, false},
		{"at threshold", 100, 101, 0.01, true},
		{"decrease", 100, 90, 0.05, true},
		{"from zero", 0, 1, 0.5, true},
		{"zero threshold", 100, 100.001, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, significantChange(tt.prev, tt.next, tt.minRel))
		})
	}
}

func TestHeadlineChanged(t *testing.T) {
	base := snapshotWith(100*model.MB, model.MB)

	assert.False(t, headlineChanged(base, base, 0.01))

	threads := base
	threads.Process.ThreadCount++
	assert.True(t, headlineChanged(base, threads, 0.01))

	gc := base
	gc.GC.TimeInGCPercent = model.NewPercent(5)
	assert.True(t, headlineChanged(base, gc, 0.01))

	managed := base
	managed.Heap.Gen0.Size = model.MB + 10*model.KB
	assert.False(t, headlineChanged(base, managed, 0.01), "tiny managed change")
}

func TestTabTypeString(t *testing.T) {
	assert.Equal(t, "Overview", TabOverview.String())
	assert.Equal(t, "Threads", TabThreads.String())
	assert.Equal(t, "Unknown", TabType(9).String())
	assert.Len(t, GetAllTabs(), 3)
}
