package state

import "github.com/mabhi256/memlab/internal/model"

// UiState is the UI-facing projection of a snapshot plus a bounded,
// most-recent-first history of total managed committed bytes.
type UiState struct {
	Snapshot            model.MemorySnapshot `json:"snapshot"`
	TotalManagedHistory []int64              `json:"total_managed_history"`
	HistoryCapacity     int                  `json:"history_capacity"`
}

// NewUiState returns an empty state. Capacity is coerced to at least 1.
func NewUiState(snapshot model.MemorySnapshot, capacity int) UiState {
	return UiState{
		Snapshot:        snapshot,
		HistoryCapacity: max(1, capacity),
	}
}

// WithPushedManaged returns a copy with total prepended to the history,
// dropping the oldest entries beyond HistoryCapacity. The receiver's
// history is never modified.
func (s UiState) WithPushedManaged(total model.ByteSize) UiState {
	capacity := max(1, s.HistoryCapacity)

	keep := min(len(s.TotalManagedHistory), capacity-1)
	history := make([]int64, 0, keep+1)
	history = append(history, total.Bytes())
	history = append(history, s.TotalManagedHistory[:keep]...)

	s.TotalManagedHistory = history
	s.HistoryCapacity = capacity
	return s
}

// Chronological returns the history oldest-first.
func (s UiState) Chronological() []int64 {
	out := make([]int64, len(s.TotalManagedHistory))
	for i, v := range s.TotalManagedHistory {
		out[len(out)-1-i] = v
	}
	return out
}
