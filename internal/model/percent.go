package model

import (
	"fmt"
	"math"
)

// Percent is a value in [0, 100].
type Percent float64

// NewPercent clamps v into [0, 100]. NaN maps to 0.
func NewPercent(v float64) Percent {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 100:
		return 100
	default:
		return Percent(v)
	}
}

// PercentFromRatio converts a 0..1 ratio, clamping the result.
func PercentFromRatio(r float64) Percent {
	return NewPercent(r * 100)
}

func (p Percent) Value() float64 {
	return float64(p)
}

// Ratio returns the percent as a 0..1 fraction.
func (p Percent) Ratio() float64 {
	return float64(p) / 100
}

func (p Percent) String() string {
	return fmt.Sprintf("%.1f%%", float64(p))
}
