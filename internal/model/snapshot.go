package model

import "time"

// MemorySnapshot is one coherent sample. Values are never mutated after publication.
type MemorySnapshot struct {
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Process   ProcessMemory   `json:"process" yaml:"process"`
	GC        GcStats         `json:"gc" yaml:"gc"`
	Heap      HeapBreakdown   `json:"heap" yaml:"heap"`
	Threads   ThreadsSnapshot `json:"threads" yaml:"threads"`
}

// TotalManagedCommitted is the committed size of the managed heap.
func (s MemorySnapshot) TotalManagedCommitted() ByteSize {
	return s.Heap.TotalCommitted()
}

func (s MemorySnapshot) FragmentedBytes() ByteSize {
	return s.GC.FragmentedBytes
}
