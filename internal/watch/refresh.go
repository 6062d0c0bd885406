package watch

import (
	"math"

	"github.com/mabhi256/memlab/internal/model"
)

// significantChange reports whether next differs from prev by at least
// minRel of prev. A zero threshold treats every change as significant.
func significantChange(prev, next, minRel float64) bool {
	if prev == next {
		return false
	}
	if minRel <= 0 || prev == 0 {
		return true
	}
	return math.Abs(next-prev)/math.Abs(prev) >= minRel
}

// headlineChanged decides whether the headline figures should be redrawn.
func headlineChanged(prev, next model.MemorySnapshot, minRel float64) bool {
	if prev.Process.ThreadCount != next.Process.ThreadCount {
		return true
	}

	pairs := [][2]float64{
		{float64(prev.Process.WorkingSet), float64(next.Process.WorkingSet)},
		{float64(prev.Process.PrivateBytes), float64(next.Process.PrivateBytes)},
		{float64(prev.TotalManagedCommitted()), float64(next.TotalManagedCommitted())},
		{prev.GC.TimeInGCPercent.Value(), next.GC.TimeInGCPercent.Value()},
	}
	for _, p := range pairs {
		if significantChange(p[0], p[1], minRel) {
			return true
		}
	}
	return false
}
