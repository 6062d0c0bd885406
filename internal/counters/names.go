package counters

// Name is the closed set of counters the aggregator understands.
type Name int

const (
	Gen0Size Name = iota
	Gen1Size
	Gen2Size
	LargeObjectSize
	PinnedObjectSize
	TimeInGC
	AllocatedBytes

	numNames
)

var wireNames = [numNames]string{
	Gen0Size:         "gen-0-size",
	Gen1Size:         "gen-1-size",
	Gen2Size:         "gen-2-size",
	LargeObjectSize:  "loh-size",
	PinnedObjectSize: "poh-size",
	TimeInGC:         "time-in-gc",
	AllocatedBytes:   "allocated-bytes",
}

var byWireName = func() map[string]Name {
	m := make(map[string]Name, numNames)
	for i, s := range wireNames {
		m[s] = Name(i)
	}
	return m
}()

// ParseName maps a feed counter name to its Name.
func ParseName(s string) (Name, bool) {
	n, ok := byWireName[s]
	return n, ok
}

// String returns the feed wire name.
func (n Name) String() string {
	if n < 0 || n >= numNames {
		return "unknown"
	}
	return wireNames[n]
}

// AllNames lists every known counter in declaration order.
func AllNames() []Name {
	out := make([]Name, 0, numNames)
	for n := Name(0); n < numNames; n++ {
		out = append(out, n)
	}
	return out
}

// Sink receives counter updates from a feed.
type Sink interface {
	OnCounter(name string, value float64)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name string, value float64)

func (f SinkFunc) OnCounter(name string, value float64) {
	f(name, value)
}
