package watch

type TabType int

const (
	TabOverview TabType = iota
	TabHeap
	TabThreads
)

func (t TabType) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabHeap:
		return "Heap"
	case TabThreads:
		return "Threads"
	default:
		return "Unknown"
	}
}

func GetAllTabs() []TabType {
	return []TabType{TabOverview, TabHeap, TabThreads}
}

const lastTab = TabThreads
