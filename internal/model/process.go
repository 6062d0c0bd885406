package model

// ProcessMemory holds OS-level memory counters for the observed process.
type ProcessMemory struct {
	WorkingSet    ByteSize `json:"working_set" yaml:"working_set"`
	PrivateBytes  ByteSize `json:"private_bytes" yaml:"private_bytes"`
	VirtualMemory ByteSize `json:"virtual_memory" yaml:"virtual_memory"`
	ThreadCount   int      `json:"thread_count" yaml:"thread_count"`
}

type ThreadInfo struct {
	ID           int32    `json:"id" yaml:"id"`
	StackReserve ByteSize `json:"stack_reserve" yaml:"stack_reserve"`
	CallDepth    *int     `json:"call_depth,omitempty" yaml:"call_depth,omitempty"`
	IsUIThread   bool     `json:"is_ui_thread" yaml:"is_ui_thread"`
}

// ThreadsSnapshot carries the total thread count and a possibly sampled list.
type ThreadsSnapshot struct {
	TotalThreads int          `json:"total_threads" yaml:"total_threads"`
	Threads      []ThreadInfo `json:"threads" yaml:"threads"`
}

// EstimatedTotalStackReserve sums the reserves of the listed threads.
func (t ThreadsSnapshot) EstimatedTotalStackReserve() ByteSize {
	var total ByteSize
	for _, th := range t.Threads {
		total = total.SaturatingAdd(th.StackReserve)
	}
	return total
}

// UIThread returns the flagged thread, if listed.
func (t ThreadsSnapshot) UIThread() (ThreadInfo, bool) {
	for _, th := range t.Threads {
		if th.IsUIThread {
			return th, true
		}
	}
	return ThreadInfo{}, false
}
