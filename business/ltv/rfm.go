package ltv

import (
	"time"

	"marketPulse/domain"
	"marketPulse/pkg/stats"
)

// distributionStats holds the population-wide quintile breakpoints for the
// three RFM dimensions.
type distributionStats struct {
	recencyCuts   [4]float64
	frequencyCuts [4]float64
	monetaryCuts  [4]float64
}

func computeDistribution(customers []domain.CustomerAggregate, asOf time.Time) distributionStats {
	recency := make([]float64, 0, len(customers))
	frequency := make([]float64, 0, len(customers))
	monetary := make([]float64, 0, len(customers))

	for _, c := range customers {
		recency = append(recency, daysBetween(c.LastOrderDate, asOf))
		frequency = append(frequency, float64(c.OrderCount))
		monetary = append(monetary, c.TotalRevenue)
	}

	return distributionStats{
		recencyCuts:   stats.Quintiles(recency),
		frequencyCuts: stats.Quintiles(frequency),
		monetaryCuts:  stats.Quintiles(monetary),
	}
}

// scoreDimension counts how many quintile breakpoints the value meets or
// exceeds. The recency scale is reversed: fewer days since the last order
// is better.
func scoreDimension(value float64, cuts [4]float64, reverse bool) int {
	met := 0
	for _, cut := range cuts {
		if value >= cut {
			met++
		}
	}
	if reverse {
		return 5 - met
	}
	return 1 + met
}

func scoreRFM(c domain.CustomerAggregate, dist distributionStats, asOf time.Time) domain.RFMScore {
	r := scoreDimension(daysBetween(c.LastOrderDate, asOf), dist.recencyCuts, true)
	f := scoreDimension(float64(c.OrderCount), dist.frequencyCuts, false)
	m := scoreDimension(c.TotalRevenue, dist.monetaryCuts, false)

	return domain.RFMScore{
		Recency:   r,
		Frequency: f,
		Monetary:  m,
		Combined:  r*100 + f*10 + m,
		Segment:   segmentFor(r, f, m),
	}
}

// segmentFor assigns one of the eight RFM segments. Rules overlap on
// purpose and are evaluated in order, first match wins.
func segmentFor(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return "Champions"
	case f >= 4 && m >= 4:
		return "Loyal Customers"
	case r >= 4 && f >= 2 && f <= 4:
		return "Potential Loyalists"
	case r >= 4 && f <= 2:
		return "New Customers"
	case r <= 2 && f >= 3:
		return "At Risk"
	case r <= 2 && f <= 2 && m <= 2:
		return "Hibernating"
	case r <= 2 && f <= 2:
		return "About to Sleep"
	default:
		return "Need Attention"
	}
}

func daysBetween(from, to time.Time) float64 {
	d := to.Sub(from).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
