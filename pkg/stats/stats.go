// Package stats holds the shared pure statistics helpers used by the
// analytics services: distribution summaries, quintile breakpoints,
// ordinary least squares, autocorrelation and rounding.
package stats

import (
	"math"
	"sort"
)

func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Percentile returns the value at quantile q in [0,1] using the
// floor-index convention (sorted[floor(q*n)], clamped to the last element).
func Percentile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	idx := int(q * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// Quintiles returns the four quintile breakpoints (20/40/60/80).
func Quintiles(xs []float64) [4]float64 {
	return [4]float64{
		Percentile(xs, 0.2),
		Percentile(xs, 0.4),
		Percentile(xs, 0.6),
		Percentile(xs, 0.8),
	}
}

// OLSSlope fits y = a + b*x over x = 0..n-1 and returns b.
func OLSSlope(ys []float64) float64 {
	n := len(ys)
	if n < 2 {
		return 0
	}
	meanX := float64(n-1) / 2
	meanY := Mean(ys)

	num := 0.0
	den := 0.0
	for i, y := range ys {
		dx := float64(i) - meanX
		num += dx * (y - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Autocorrelation returns the correlation of xs with itself at the given lag.
func Autocorrelation(xs []float64, lag int) float64 {
	n := len(xs)
	if lag <= 0 || lag >= n {
		return 0
	}
	mean := Mean(xs)

	num := 0.0
	den := 0.0
	for i := 0; i < n; i++ {
		d := xs[i] - mean
		den += d * d
		if i >= lag {
			num += d * (xs[i-lag] - mean)
		}
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ZValue maps a confidence level to its two-sided normal z value.
func ZValue(confidence float64) float64 {
	switch {
	case confidence >= 0.99:
		return 2.576
	case confidence >= 0.95:
		return 1.96
	case confidence >= 0.90:
		return 1.645
	case confidence >= 0.80:
		return 1.282
	default:
		return 1.96
	}
}

func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
