package model

// GenerationStats describes one generation of the small object heap.
// Delta is reserved for change since the previous sample and is zero today.
type GenerationStats struct {
	Generation  GenerationKind `json:"generation" yaml:"generation"`
	Size        ByteSize       `json:"size" yaml:"size"`
	Collections int64          `json:"collections" yaml:"collections"`
	Delta       ByteSize       `json:"delta" yaml:"delta"`
}

type SegmentStats struct {
	Kind  SegmentKind `json:"kind" yaml:"kind"`
	Size  ByteSize    `json:"size" yaml:"size"`
	Delta ByteSize    `json:"delta" yaml:"delta"`
}

// HeapBreakdown is the per-generation and per-segment view of the managed heap.
type HeapBreakdown struct {
	Gen0         GenerationStats `json:"gen0" yaml:"gen0"`
	Gen1         GenerationStats `json:"gen1" yaml:"gen1"`
	Gen2         GenerationStats `json:"gen2" yaml:"gen2"`
	LargeObject  SegmentStats    `json:"large_object" yaml:"large_object"`
	PinnedObject SegmentStats    `json:"pinned_object" yaml:"pinned_object"`
}

// Generations returns gen0..gen2 in order.
func (h HeapBreakdown) Generations() []GenerationStats {
	return []GenerationStats{h.Gen0, h.Gen1, h.Gen2}
}

// SohTotal is gen0 + gen1 + gen2.
func (h HeapBreakdown) SohTotal() ByteSize {
	return h.Gen0.Size.SaturatingAdd(h.Gen1.Size).SaturatingAdd(h.Gen2.Size)
}

// TotalCommitted is the small object heap plus both segments.
func (h HeapBreakdown) TotalCommitted() ByteSize {
	return h.SohTotal().SaturatingAdd(h.LargeObject.Size).SaturatingAdd(h.PinnedObject.Size)
}

func (h HeapBreakdown) SohPercentOfTotal() Percent {
	return h.percentOfTotal(h.SohTotal())
}

func (h HeapBreakdown) LargeObjectPercentOfTotal() Percent {
	return h.percentOfTotal(h.LargeObject.Size)
}

func (h HeapBreakdown) PinnedObjectPercentOfTotal() Percent {
	return h.percentOfTotal(h.PinnedObject.Size)
}

func (h HeapBreakdown) percentOfTotal(part ByteSize) Percent {
	total := h.TotalCommitted()
	if total == 0 {
		return 0
	}
	return PercentFromRatio(part.Ratio(total))
}
