package exporter

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mabhi256/memlab/internal/model"
)

const namespace = "memlab"

// Exporter mirrors the latest snapshot into Prometheus gauges.
// It is a snapshot observer and keeps its own registry.
type Exporter struct {
	registry *prometheus.Registry

	WorkingSet     prometheus.Gauge
	PrivateBytes   prometheus.Gauge
	VirtualMemory  prometheus.Gauge
	Threads        prometheus.Gauge
	StackReserve   prometheus.Gauge
	ManagedTotal   prometheus.Gauge
	HeapSize       prometheus.Gauge
	GCCommitted    prometheus.Gauge
	Fragmented     prometheus.Gauge
	TimeInGC       prometheus.Gauge
	AllocatedBytes prometheus.Gauge
	LastSample     prometheus.Gauge
	Snapshots      prometheus.Counter

	GenerationSize *prometheus.GaugeVec
	Collections    *prometheus.GaugeVec
	SegmentSize    *prometheus.GaugeVec
	SegmentPercent *prometheus.GaugeVec
}

func New() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	return &Exporter{
		registry: reg,

		WorkingSet:     gauge("process_working_set_bytes", "Resident set size of the observed process"),
		PrivateBytes:   gauge("process_private_bytes", "Private memory of the observed process"),
		VirtualMemory:  gauge("process_virtual_bytes", "Virtual memory size of the observed process"),
		Threads:        gauge("process_threads", "OS thread count of the observed process"),
		StackReserve:   gauge("process_stack_reserve_bytes", "Estimated stack reserve across listed threads"),
		ManagedTotal:   gauge("heap_committed_bytes", "Managed heap committed bytes across generations and segments"),
		HeapSize:       gauge("gc_heap_bytes", "Heap size reported by the runtime"),
		GCCommitted:    gauge("gc_committed_bytes", "Total committed bytes reported by the runtime"),
		Fragmented:     gauge("gc_fragmented_bytes", "Fragmented heap bytes"),
		TimeInGC:       gauge("gc_time_percent", "Share of time spent in GC over the last window"),
		AllocatedBytes: gauge("gc_allocated_bytes", "Cumulative allocated bytes"),
		LastSample:     gauge("last_sample_timestamp_seconds", "Unix time of the latest snapshot"),
		Snapshots: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshots observed by the exporter",
		}),

		GenerationSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_size_bytes",
			Help:      "Committed size per heap generation",
		}, []string{"generation"}),
		Collections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation_collections",
			Help:      "Cumulative collection count per generation",
		}, []string{"generation"}),
		SegmentSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segment_size_bytes",
			Help:      "Committed size per heap segment",
		}, []string{"segment"}),
		SegmentPercent: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "segment_percent_of_total",
			Help:      "Share of managed committed bytes per segment",
		}, []string{"segment"}),
	}
}

// OnNext implements broadcast.Observer.
func (e *Exporter) OnNext(s model.MemorySnapshot) {
	e.WorkingSet.Set(float64(s.Process.WorkingSet))
	e.PrivateBytes.Set(float64(s.Process.PrivateBytes))
	e.VirtualMemory.Set(float64(s.Process.VirtualMemory))
	e.Threads.Set(float64(s.Threads.TotalThreads))
	e.StackReserve.Set(float64(s.Threads.EstimatedTotalStackReserve()))

	e.ManagedTotal.Set(float64(s.TotalManagedCommitted()))
	e.HeapSize.Set(float64(s.GC.TotalHeap))
	e.GCCommitted.Set(float64(s.GC.TotalCommitted))
	e.Fragmented.Set(float64(s.FragmentedBytes()))
	e.TimeInGC.Set(s.GC.TimeInGCPercent.Value())
	e.AllocatedBytes.Set(float64(s.GC.TotalAllocatedBytes))
	e.LastSample.Set(float64(s.Timestamp.UnixNano()) / 1e9)

	for _, g := range s.Heap.Generations() {
		e.GenerationSize.WithLabelValues(g.Generation.String()).Set(float64(g.Size))
		e.Collections.WithLabelValues(g.Generation.String()).Set(float64(g.Collections))
	}

	h := s.Heap
	e.SegmentSize.WithLabelValues("soh").Set(float64(h.SohTotal()))
	e.SegmentSize.WithLabelValues(model.LargeObject.String()).Set(float64(h.LargeObject.Size))
	e.SegmentSize.WithLabelValues(model.PinnedObject.String()).Set(float64(h.PinnedObject.Size))
	e.SegmentPercent.WithLabelValues("soh").Set(h.SohPercentOfTotal().Value())
	e.SegmentPercent.WithLabelValues(model.LargeObject.String()).Set(h.LargeObjectPercentOfTotal().Value())
	e.SegmentPercent.WithLabelValues(model.PinnedObject.String()).Set(h.PinnedObjectPercentOfTotal().Value())

	e.Snapshots.Inc()
}

// Registry exposes the exporter's registry for additional collectors.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the exporter's metrics in the Prometheus text format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
