package model

// GcStats is the collector-level view assembled at sample time.
type GcStats struct {
	Gen0Collections     int64    `json:"gen0_collections" yaml:"gen0_collections"`
	Gen1Collections     int64    `json:"gen1_collections" yaml:"gen1_collections"`
	Gen2Collections     int64    `json:"gen2_collections" yaml:"gen2_collections"`
	TotalAllocatedBytes uint64   `json:"total_allocated_bytes" yaml:"total_allocated_bytes"`
	TimeInGCPercent     Percent  `json:"time_in_gc_percent" yaml:"time_in_gc_percent"`
	TotalCommitted      ByteSize `json:"total_committed" yaml:"total_committed"`
	TotalHeap           ByteSize `json:"total_heap" yaml:"total_heap"`
	FragmentedBytes     ByteSize `json:"fragmented_bytes" yaml:"fragmented_bytes"`
}

// Collections returns the count for one generation.
func (g GcStats) Collections(gen GenerationKind) int64 {
	switch gen {
	case Gen0:
		return g.Gen0Collections
	case Gen1:
		return g.Gen1Collections
	case Gen2:
		return g.Gen2Collections
	default:
		return 0
	}
}
