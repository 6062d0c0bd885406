package utils

import (
	"math"
	"time"
)

// LinearRegression fits y = a + slope*x by least squares and returns the
// slope with Pearson's correlation. Degenerate input yields zeros.
func LinearRegression(x, y []float64) (slope, correlation float64) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0
	}

	meanX, meanY := CalculateMean(x), CalculateMean(y)

	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	if sxx == 0 {
		return 0, 0
	}
	slope = sxy / sxx
	if syy == 0 {
		return slope, 0
	}
	return slope, sxy / math.Sqrt(sxx*syy)
}

// CalculateTrend fits evenly spaced samples, oldest first, and returns the
// slope in units per second.
func CalculateTrend[T Numeric](samples []T, interval time.Duration) (perSecond, correlation float64) {
	if len(samples) < 2 || interval <= 0 {
		return 0, 0
	}

	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	for i, v := range samples {
		x[i] = float64(i)
		y[i] = float64(v)
	}

	slope, correlation := LinearRegression(x, y)
	return slope / interval.Seconds(), correlation
}
