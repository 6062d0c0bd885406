package counters

import (
	"context"
	"math"
	"runtime/metrics"
	"time"

	"github.com/rs/zerolog"

	"github.com/mabhi256/memlab/internal/model"
)

// largeObjectThreshold is the allocation size from which objects are
// reported as large-object segment bytes.
const largeObjectThreshold = 32 * 1024

// RuntimeFeed polls runtime/metrics and pushes counter values into a Sink,
// playing the role of an asynchronous counter producer.
//
// gen-1-size and poh-size have no Go equivalent and are never published.
type RuntimeFeed struct {
	sink     Sink
	interval time.Duration
	logger   zerolog.Logger
	set      *metricSet

	lastGCCPU    float64
	lastTotalCPU float64
}

func NewRuntimeFeed(sink Sink, interval time.Duration, logger zerolog.Logger) *RuntimeFeed {
	if interval <= 0 {
		interval = time.Second
	}
	return &RuntimeFeed{
		sink:     sink,
		interval: interval,
		logger:   logger.With().Str("component", "runtime_feed").Logger(),
		set: newMetricSet(
			metricHeapObjects, metricHeapLive, metricAllocBytes,
			metricAllocsBySize, metricFreesBySize, metricGCCPU, metricTotalCPU,
		),
	}
}

// Run polls until ctx is cancelled. It publishes once immediately.
func (f *RuntimeFeed) Run(ctx context.Context) error {
	f.logger.Info().Dur("interval", f.interval).Msg("Runtime counter feed started")
	defer f.logger.Info().Msg("Runtime counter feed stopped")

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.Poll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			f.Poll()
		}
	}
}

// Poll reads the runtime once and pushes every derived counter.
// It is not safe to call Poll concurrently with itself.
func (f *RuntimeFeed) Poll() {
	f.set.read(func(v metricValues) {
		objects := v.uint64(metricHeapObjects)
		live := v.uint64(metricHeapLive)
		var young uint64
		if objects > live {
			young = objects - live
		}

		f.emit(Gen0Size, float64(young))
		f.emit(Gen2Size, float64(live))
		f.emit(LargeObjectSize, float64(largeObjectBytes(
			v.histogram(metricAllocsBySize), v.histogram(metricFreesBySize))))
		f.emit(AllocatedBytes, float64(v.uint64(metricAllocBytes)))

		gcCPU, totalCPU := v.float64(metricGCCPU), v.float64(metricTotalCPU)
		if dt := totalCPU - f.lastTotalCPU; dt > 0 {
			f.emit(TimeInGC, math.Max(0, gcCPU-f.lastGCCPU)/dt)
			f.lastGCCPU, f.lastTotalCPU = gcCPU, totalCPU
		}
	})
}

func (f *RuntimeFeed) emit(name Name, value float64) {
	f.sink.OnCounter(name.String(), value)
}

// largeObjectBytes estimates live bytes in allocation size classes at or
// above largeObjectThreshold, using each bucket's lower bound.
func largeObjectBytes(allocs, frees *metrics.Float64Histogram) model.ByteSize {
	if allocs == nil || frees == nil || len(allocs.Counts) != len(frees.Counts) {
		return 0
	}

	var total model.ByteSize
	for i, allocated := range allocs.Counts {
		if i >= len(allocs.Buckets) {
			break
		}
		lower := allocs.Buckets[i]
		if math.IsInf(lower, 0) || lower < largeObjectThreshold {
			continue
		}
		freed := frees.Counts[i]
		if allocated <= freed {
			continue
		}
		total = total.SaturatingAdd(model.ClampBytes(float64(allocated-freed) * lower))
	}
	return total
}
