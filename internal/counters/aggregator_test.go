package counters

import (
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/memlab/internal/model"
)

func fixedQuery(stats RuntimeStats) RuntimeQuery {
	return RuntimeQueryFunc(func() RuntimeStats { return stats })
}

func newTestAggregator() *Aggregator {
	return NewAggregator(fixedQuery(RuntimeStats{}), zerolog.Nop())
}

func TestAggregator_NeverSeenCountersAreZero(t *testing.T) {
	gc, heap := newTestAggregator().Build()

	assert.Equal(t, model.GcStats{}, gc)
	assert.Equal(t, model.ByteSize(0), heap.TotalCommitted())
	assert.Equal(t, model.Gen2, heap.Gen2.Generation)
	assert.Equal(t, model.PinnedObject, heap.PinnedObject.Kind)
}

func TestAggregator_SizesLastWriteWins(t *testing.T) {
	a := newTestAggregator()
	a.OnCounter("gen-0-size", 100)
	a.OnCounter("gen-0-size", 200)
	a.OnCounter("gen-1-size", 300)
	a.OnCounter("gen-2-size", 400)
	a.OnCounter("loh-size", 500)
	a.OnCounter("poh-size", 600)

	_, heap := a.Build()
	assert.Equal(t, model.ByteSize(200), heap.Gen0.Size)
	assert.Equal(t, model.ByteSize(300), heap.Gen1.Size)
	assert.Equal(t, model.ByteSize(400), heap.Gen2.Size)
	assert.Equal(t, model.ByteSize(500), heap.LargeObject.Size)
	assert.Equal(t, model.ByteSize(600), heap.PinnedObject.Size)
	assert.Equal(t, model.ByteSize(2000), heap.TotalCommitted())
}

func TestAggregator_SizeCoercion(t *testing.T) {
	a := newTestAggregator()
	a.OnCounter("gen-0-size", -42)
	a.OnCounter("gen-1-size", math.NaN())
	a.OnCounter("gen-2-size", math.Inf(1))

	_, heap := a.Build()
	assert.Equal(t, model.ByteSize(0), heap.Gen0.Size)
	assert.Equal(t, model.ByteSize(0), heap.Gen1.Size)
	assert.Equal(t, model.MaxByteSize, heap.Gen2.Size)
}

func TestAggregator_TimeInGC(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  model.Percent
	}{
		{"ratio", 0.25, 25},
		{"zero", 0, 0},
		{"percent passes through", 42, 42},
		{"percent above range clamps", 150, 100},
		{"negative clamps", -3, 0},
		{"nan is zero", math.NaN(), 0},
		// 1.0 is read as a ratio: a feed reporting exactly 1% lands on 100%.
		{"exactly one is a ratio", 1.0, 100},
		// Just above the ratio threshold the value is taken as a percent.
		{"just above one is a percent", 1.5, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAggregator()
			a.OnCounter("time-in-gc", tt.input)

			gc, _ := a.Build()
			assert.InDelta(t, tt.want.Value(), gc.TimeInGCPercent.Value(), 1e-9)
			assert.GreaterOrEqual(t, gc.TimeInGCPercent.Value(), 0.0)
			assert.LessOrEqual(t, gc.TimeInGCPercent.Value(), 100.0)
		})
	}
}

func TestAggregator_AllocatedBytes(t *testing.T) {
	a := newTestAggregator()

	a.OnCounter("allocated-bytes", -5)
	gc, _ := a.Build()
	assert.Equal(t, uint64(0), gc.TotalAllocatedBytes)

	a.OnCounter("allocated-bytes", 1_000_000)
	gc, _ = a.Build()
	assert.Equal(t, uint64(1_000_000), gc.TotalAllocatedBytes)

	a.OnCounter("allocated-bytes", math.Inf(1))
	gc, _ = a.Build()
	assert.Equal(t, uint64(math.MaxUint64), gc.TotalAllocatedBytes)
}

func TestAggregator_UnknownCounterIgnored(t *testing.T) {
	a := newTestAggregator()
	a.OnCounter("gen-0-size", 10)
	a.OnCounter("gen-3-size", 99)
	a.OnCounter("gen-3-size", 99)
	a.OnCounter("", 1)

	gc, heap := a.Build()
	assert.Equal(t, model.ByteSize(10), heap.TotalCommitted())
	assert.Equal(t, uint64(0), gc.TotalAllocatedBytes)
}

func TestAggregator_BuildUsesDirectQuery(t *testing.T) {
	stats := RuntimeStats{
		Collections:    [3]int64{7, 3, -1},
		TotalCommitted: 4 * model.MB,
		HeapSize:       3 * model.MB,
		Fragmented:     512 * model.KB,
	}
	a := NewAggregator(fixedQuery(stats), zerolog.Nop())

	gc, heap := a.Build()
	assert.Equal(t, int64(7), gc.Gen0Collections)
	assert.Equal(t, int64(3), gc.Gen1Collections)
	assert.Equal(t, int64(0), gc.Gen2Collections)
	assert.Equal(t, int64(7), heap.Gen0.Collections)
	assert.Equal(t, 4*model.MB, gc.TotalCommitted)
	assert.Equal(t, 3*model.MB, gc.TotalHeap)
	assert.Equal(t, 512*model.KB, gc.FragmentedBytes)
}

func TestAggregator_BuildDoesNotMutate(t *testing.T) {
	a := newTestAggregator()
	a.OnCounter("gen-0-size", 64)
	a.OnCounter("time-in-gc", 0.1)

	gc1, heap1 := a.Build()
	gc2, heap2 := a.Build()
	assert.Equal(t, gc1, gc2)
	assert.Equal(t, heap1, heap2)
}

func TestAggregator_ConcurrentWritesAndBuild(t *testing.T) {
	a := newTestAggregator()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				a.OnCounter("gen-0-size", float64(i))
				a.OnCounter("time-in-gc", float64(i%200))
				a.Set(AllocatedBytes, float64(i*w))
			}
		}(w)
	}

	for i := 0; i < 1000; i++ {
		gc, heap := a.Build()
		require.GreaterOrEqual(t, heap.Gen0.Size, model.ByteSize(0))
		require.LessOrEqual(t, gc.TimeInGCPercent.Value(), 100.0)
	}
	wg.Wait()

	_, heap := a.Build()
	assert.Equal(t, model.ByteSize(999), heap.Gen0.Size)
}

func TestParseName(t *testing.T) {
	for _, n := range AllNames() {
		got, ok := ParseName(n.String())
		require.True(t, ok, n.String())
		assert.Equal(t, n, got)
	}

	_, ok := ParseName("working-set")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Name(-1).String())
	assert.Len(t, AllNames(), 7)
}
