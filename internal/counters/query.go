package counters

import (
	"runtime/metrics"
	"sync"

	"github.com/mabhi256/memlab/internal/model"
)

// RuntimeStats is the result of a direct, synchronous runtime query.
type RuntimeStats struct {
	Collections    [3]int64
	TotalCommitted model.ByteSize
	HeapSize       model.ByteSize
	Fragmented     model.ByteSize
}

// RuntimeQuery is read at every Build. Implementations must not fail or block.
type RuntimeQuery interface {
	Query() RuntimeStats
}

// RuntimeQueryFunc adapts a function to RuntimeQuery.
type RuntimeQueryFunc func() RuntimeStats

func (f RuntimeQueryFunc) Query() RuntimeStats {
	return f()
}

const (
	metricGCCycles     = "/gc/cycles/total:gc-cycles"
	metricHeapObjects  = "/memory/classes/heap/objects:bytes"
	metricHeapUnused   = "/memory/classes/heap/unused:bytes"
	metricHeapFree     = "/memory/classes/heap/free:bytes"
	metricHeapStacks   = "/memory/classes/heap/stacks:bytes"
	metricHeapLive     = "/gc/heap/live:bytes"
	metricAllocBytes   = "/gc/heap/allocs:bytes"
	metricAllocsBySize = "/gc/heap/allocs-by-size:bytes"
	metricFreesBySize  = "/gc/heap/frees-by-size:bytes"
	metricGCCPU        = "/cpu/classes/gc/total:cpu-seconds"
	metricTotalCPU     = "/cpu/classes/total:cpu-seconds"
)

// metricSet reads a fixed list of runtime/metrics samples.
// metrics.Read is not safe on a shared slice, so reads are serialized.
type metricSet struct {
	mu      sync.Mutex
	samples []metrics.Sample
	index   map[string]int
}

func newMetricSet(names ...string) *metricSet {
	ms := &metricSet{
		samples: make([]metrics.Sample, len(names)),
		index:   make(map[string]int, len(names)),
	}
	for i, name := range names {
		ms.samples[i].Name = name
		ms.index[name] = i
	}
	return ms
}

// read refreshes every sample and calls fn while the values are stable.
func (ms *metricSet) read(fn func(v metricValues)) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	metrics.Read(ms.samples)
	fn(metricValues{ms})
}

type metricValues struct {
	ms *metricSet
}

func (v metricValues) value(name string) (metrics.Value, bool) {
	i, ok := v.ms.index[name]
	if !ok {
		return metrics.Value{}, false
	}
	return v.ms.samples[i].Value, true
}

// uint64 returns 0 for metrics the running toolchain does not support.
func (v metricValues) uint64(name string) uint64 {
	val, ok := v.value(name)
	if !ok || val.Kind() != metrics.KindUint64 {
		return 0
	}
	return val.Uint64()
}

func (v metricValues) float64(name string) float64 {
	val, ok := v.value(name)
	if !ok || val.Kind() != metrics.KindFloat64 {
		return 0
	}
	return val.Float64()
}

func (v metricValues) histogram(name string) *metrics.Float64Histogram {
	val, ok := v.value(name)
	if !ok || val.Kind() != metrics.KindFloat64Histogram {
		return nil
	}
	return val.Float64Histogram()
}

func (v metricValues) bytes(name string) model.ByteSize {
	return model.BytesFromUint64(v.uint64(name))
}

// GoRuntimeQuery answers RuntimeQuery from the Go runtime.
// The Go collector is not generational, so every generation reports the
// total number of completed cycles.
type GoRuntimeQuery struct {
	set *metricSet
}

func NewGoRuntimeQuery() *GoRuntimeQuery {
	return &GoRuntimeQuery{
		set: newMetricSet(metricGCCycles, metricHeapObjects, metricHeapUnused, metricHeapFree, metricHeapStacks),
	}
}

func (q *GoRuntimeQuery) Query() RuntimeStats {
	var stats RuntimeStats
	q.set.read(func(v metricValues) {
		cycles := int64(min(v.uint64(metricGCCycles), uint64(1<<63-1)))
		stats.Collections = [3]int64{cycles, cycles, cycles}

		objects := v.bytes(metricHeapObjects)
		unused := v.bytes(metricHeapUnused)
		stats.HeapSize = objects.SaturatingAdd(unused)
		stats.TotalCommitted = stats.HeapSize.
			SaturatingAdd(v.bytes(metricHeapFree)).
			SaturatingAdd(v.bytes(metricHeapStacks))
		stats.Fragmented = unused
	})
	return stats
}
