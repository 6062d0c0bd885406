package model

import "fmt"

type GenerationKind int

const (
	Gen0 GenerationKind = iota
	Gen1
	Gen2
)

func (g GenerationKind) String() string {
	switch g {
	case Gen0:
		return "gen0"
	case Gen1:
		return "gen1"
	case Gen2:
		return "gen2"
	default:
		return fmt.Sprintf("gen(%d)", int(g))
	}
}

// SegmentKind names the heap segments kept outside the generational small object heap.
type SegmentKind int

const (
	LargeObject SegmentKind = iota
	PinnedObject
)

func (s SegmentKind) String() string {
	switch s {
	case LargeObject:
		return "loh"
	case PinnedObject:
		return "poh"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}
