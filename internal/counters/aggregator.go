package counters

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/mabhi256/memlab/internal/model"
)

// Aggregator merges asynchronously arriving counter values and builds
// GcStats and HeapBreakdown on demand.
//
// Each counter lives in its own atomic word. Build sees the latest completed
// write per counter but may mix values from slightly different moments.
type Aggregator struct {
	sizes     [PinnedObjectSize + 1]atomic.Int64
	timeInGC  atomic.Uint64 // math.Float64bits of a clamped percent
	allocated atomic.Uint64

	query   RuntimeQuery
	logger  zerolog.Logger
	unknown sync.Map
}

// NewAggregator uses the Go runtime when query is nil.
func NewAggregator(query RuntimeQuery, logger zerolog.Logger) *Aggregator {
	if query == nil {
		query = NewGoRuntimeQuery()
	}
	return &Aggregator{
		query:  query,
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

// OnCounter implements Sink. Unknown names are ignored and logged once.
func (a *Aggregator) OnCounter(name string, value float64) {
	n, ok := ParseName(name)
	if !ok {
		if _, seen := a.unknown.LoadOrStore(name, struct{}{}); !seen {
			a.logger.Debug().Str("counter", name).Msg("Ignoring unknown counter")
		}
		return
	}
	a.Set(n, value)
}

// Set stores one counter value, applying that counter's coercion.
func (a *Aggregator) Set(name Name, value float64) {
	switch name {
	case Gen0Size, Gen1Size, Gen2Size, LargeObjectSize, PinnedObjectSize:
		a.sizes[name].Store(int64(model.ClampBytes(value)))
	case TimeInGC:
		a.timeInGC.Store(math.Float64bits(float64(normalizeTimeInGC(value))))
	case AllocatedBytes:
		a.allocated.Store(clampUint64(value))
	}
}

// normalizeTimeInGC treats values up to 1.0 as a ratio and anything larger
// as a percent. An input of exactly 1.0 therefore means 100%, not 1%.
func normalizeTimeInGC(v float64) model.Percent {
	if v <= 1.0 {
		return model.PercentFromRatio(v)
	}
	return model.NewPercent(v)
}

func clampUint64(v float64) uint64 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= math.MaxUint64:
		return math.MaxUint64
	default:
		return uint64(v)
	}
}

// Build combines the last counter values with a fresh runtime query.
// It never blocks on the feed and does not modify the aggregator.
func (a *Aggregator) Build() (model.GcStats, model.HeapBreakdown) {
	rt := a.query.Query()

	generation := func(kind model.GenerationKind, size Name) model.GenerationStats {
		return model.GenerationStats{
			Generation:  kind,
			Size:        model.ByteSize(a.sizes[size].Load()),
			Collections: max(rt.Collections[kind], 0),
		}
	}

	heap := model.HeapBreakdown{
		Gen0: generation(model.Gen0, Gen0Size),
		Gen1: generation(model.Gen1, Gen1Size),
		Gen2: generation(model.Gen2, Gen2Size),
		LargeObject: model.SegmentStats{
			Kind: model.LargeObject,
			Size: model.ByteSize(a.sizes[LargeObjectSize].Load()),
		},
		PinnedObject: model.SegmentStats{
			Kind: model.PinnedObject,
			Size: model.ByteSize(a.sizes[PinnedObjectSize].Load()),
		},
	}

	gc := model.GcStats{
		Gen0Collections:     heap.Gen0.Collections,
		Gen1Collections:     heap.Gen1.Collections,
		Gen2Collections:     heap.Gen2.Collections,
		TotalAllocatedBytes: a.allocated.Load(),
		TimeInGCPercent:     model.Percent(math.Float64frombits(a.timeInGC.Load())),
		TotalCommitted:      rt.TotalCommitted,
		TotalHeap:           rt.HeapSize,
		FragmentedBytes:     rt.Fragmented,
	}

	return gc, heap
}
