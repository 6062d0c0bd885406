package utils

import "math"

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Summary describes a sample with population statistics.
type Summary struct {
	Count    int
	Mean     float64
	Variance float64
	Min      float64
	Max      float64
}

func (s Summary) StdDev() float64 {
	return math.Sqrt(s.Variance)
}

// Summarize computes the summary in one pass (Welford).
func Summarize[T Numeric](values []T) Summary {
	var s Summary
	var m2 float64
	for i, v := range values {
		x := float64(v)
		if i == 0 {
			s.Min, s.Max = x, x
		}
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)

		s.Count++
		delta := x - s.Mean
		s.Mean += delta / float64(s.Count)
		m2 += delta * (x - s.Mean)
	}
	if s.Count > 1 {
		s.Variance = m2 / float64(s.Count)
	}
	return s
}

func CalculateMean[T Numeric](values []T) float64 {
	return Summarize(values).Mean
}
