package forecast

import (
	"marketPulse/pkg/stats"
)

// seasonal period defaults and autocorrelation candidates per period type
var (
	defaultSeasonalPeriods = map[string]int{
		PeriodDay:   7,
		PeriodWeek:  52,
		PeriodMonth: 12,
	}
	seasonalCandidates = map[string][]int{
		PeriodDay:   {7, 14, 30},
		PeriodWeek:  {4, 13, 52},
		PeriodMonth: {3, 6, 12},
	}
)

const minPointsForDetection = 24

// autocorrelation threshold below which a candidate lag is not considered seasonal
const seasonalCorrelationFloor = 0.3

// detectSeasonalPeriod tests a fixed handful of candidate lags per period
// type and keeps the one with the strongest autocorrelation above the
// floor. This is deliberately not a spectral search.
func detectSeasonalPeriod(values []float64, periodType string) int {
	def := defaultSeasonalPeriods[periodType]
	if def == 0 {
		def = defaultSeasonalPeriods[PeriodMonth]
	}

	if len(values) < minPointsForDetection {
		return def
	}

	best := 0
	bestCorr := seasonalCorrelationFloor
	for _, lag := range seasonalCandidates[periodType] {
		if lag*2 > len(values) {
			continue
		}
		if corr := stats.Autocorrelation(values, lag); corr > bestCorr {
			bestCorr = corr
			best = lag
		}
	}
	if best == 0 {
		return def
	}
	return best
}

type decomposition struct {
	trend    []float64
	seasonal []float64 // one entry per seasonal index, centered on zero
	residual []float64
	period   int
}

// decompose splits the series into trend (centered moving average),
// seasonal indices (mean detrended value per position, re-centered) and
// residual noise.
func decompose(values []float64, seasonalPeriod int) decomposition {
	n := len(values)

	window := seasonalPeriod
	if half := n / 2; window > half {
		window = half
	}
	if window < 1 {
		window = 1
	}

	trend := make([]float64, n)
	half := window / 2
	for i := range values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > n-1 {
			hi = n - 1
		}
		trend[i] = stats.Mean(values[lo : hi+1])
	}

	seasonal := make([]float64, seasonalPeriod)
	counts := make([]int, seasonalPeriod)
	for i, v := range values {
		idx := i % seasonalPeriod
		seasonal[idx] += v - trend[i]
		counts[idx]++
	}
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] /= float64(counts[i])
		}
	}

	// re-center the seasonal component to zero mean
	center := stats.Mean(seasonal)
	for i := range seasonal {
		seasonal[i] -= center
	}

	residual := make([]float64, n)
	for i, v := range values {
		residual[i] = v - trend[i] - seasonal[i%seasonalPeriod]
	}

	return decomposition{
		trend:    trend,
		seasonal: seasonal,
		residual: residual,
		period:   seasonalPeriod,
	}
}

// growthFactor compares the slope of the recent trend tail against the
// overall slope and dampens projections when they diverge.
func growthFactor(trend []float64, overallSlope float64) float64 {
	if len(trend) < 2 || overallSlope == 0 {
		return 1
	}

	tail := trend
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	recentSlope := stats.OLSSlope(tail)

	return stats.Clamp(recentSlope/overallSlope, 0.5, 1.5)
}
