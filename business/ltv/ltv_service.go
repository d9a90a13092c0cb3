package ltv

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"marketPulse/domain"
	"marketPulse/pkg/stats"
)

const (
	SegmentHigh   = "high"
	SegmentMedium = "medium"
	SegmentLow    = "low"
)

type Options struct {
	PredictionMonths  int
	DiscountRate      float64
	AvgLifespanMonths int

	// AsOf anchors all recency math so that identical input always yields
	// identical output. The service fills it with the current time when zero.
	AsOf time.Time
}

func DefaultOptions() Options {
	return Options{
		PredictionMonths:  12,
		DiscountRate:      0.10,
		AvgLifespanMonths: 36,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.PredictionMonths <= 0 {
		o.PredictionMonths = def.PredictionMonths
	}
	if o.DiscountRate <= 0 {
		o.DiscountRate = def.DiscountRate
	}
	if o.AvgLifespanMonths <= 0 {
		o.AvgLifespanMonths = def.AvgLifespanMonths
	}
	return o
}

// ---- Repository interfaces ----

type CustomerRepository interface {
	AggregateCustomers(ctx context.Context) ([]domain.CustomerAggregate, error)
}

// ---- Usecase / Service ----

type LTVService struct {
	customerRepo CustomerRepository
}

func NewLTVService(customerRepo CustomerRepository) *LTVService {
	return &LTVService{customerRepo: customerRepo}
}

func (s *LTVService) PredictLTV(ctx context.Context, opts Options) ([]domain.LTVPrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}

	customers, err := s.customerRepo.AggregateCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customer aggregates: %w", err)
	}

	return Predict(customers, opts), nil
}

func (s *LTVService) LTVBySource(ctx context.Context, opts Options) ([]domain.SourceLTV, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if opts.AsOf.IsZero() {
		opts.AsOf = time.Now().UTC()
	}

	customers, err := s.customerRepo.AggregateCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customer aggregates: %w", err)
	}

	return BySource(customers, Predict(customers, opts)), nil
}

func (s *LTVService) SegmentDistribution(ctx context.Context, opts Options) ([]domain.SegmentStat, error) {
	predictions, err := s.PredictLTV(ctx, opts)
	if err != nil {
		return nil, err
	}

	return Distribution(predictions), nil
}

// ---- Pure prediction ----

// Predict scores every customer with RFM quintiles, estimates churn with a
// sigmoid over the purchase-interval ratio and projects the NPV-discounted
// future value. Output order follows input order.
func Predict(customers []domain.CustomerAggregate, opts Options) []domain.LTVPrediction {
	opts = opts.withDefaults()

	if len(customers) == 0 {
		return []domain.LTVPrediction{}
	}

	dist := computeDistribution(customers, opts.AsOf)

	predictions := make([]domain.LTVPrediction, 0, len(customers))
	totals := make([]float64, 0, len(customers))

	for _, c := range customers {
		p := predictOne(c, dist, opts)
		predictions = append(predictions, p)
		totals = append(totals, p.TotalLTV)
	}

	// value segments come from the quintiles of the same population
	cuts := stats.Quintiles(totals)
	for i := range predictions {
		switch {
		case predictions[i].TotalLTV >= cuts[3]:
			predictions[i].Segment = SegmentHigh
		case predictions[i].TotalLTV >= cuts[1]:
			predictions[i].Segment = SegmentMedium
		default:
			predictions[i].Segment = SegmentLow
		}
	}

	return predictions
}

func predictOne(c domain.CustomerAggregate, dist distributionStats, opts Options) domain.LTVPrediction {
	rfm := scoreRFM(c, dist, opts.AsOf)

	ageDays := math.Max(1, daysBetween(c.FirstOrderDate, opts.AsOf))
	daysSinceLast := daysBetween(c.LastOrderDate, opts.AsOf)
	orderCount := float64(c.OrderCount)

	// churn: sigmoid over how far past the usual purchase interval we are,
	// dampened for frequent buyers
	avgDaysBetween := ageDays / math.Max(orderCount, 1)
	intervalRatio := daysSinceLast / math.Max(avgDaysBetween, 1)
	churn := stats.Sigmoid(0.5 * (intervalRatio - 2))
	frequencyFactor := 1 / (1 + 0.1*orderCount)
	churn = stats.Clamp(churn*(1-0.3*frequencyFactor), 0.01, 0.99)

	// expected future orders over the prediction horizon
	purchaseRate := orderCount / ageDays
	expectedOrders := purchaseRate * float64(opts.PredictionMonths*30) *
		math.Pow(1-churn, float64(opts.PredictionMonths)/12)
	// lifetime cap from the average lifespan assumption
	maxOrders := purchaseRate * float64(opts.AvgLifespanMonths*30)
	expectedOrders = math.Min(expectedOrders, maxOrders)
	expectedOrders = stats.Round2(math.Max(0, expectedOrders))

	npvFactor := 1 / (1 + (opts.DiscountRate/12)*float64(opts.PredictionMonths))
	predicted := stats.Round2(math.Max(0, expectedOrders*c.AvgOrderValue*(1-churn)*npvFactor))

	confidence := stats.Round2(
		math.Min(orderCount/10, 1)*0.4 +
			math.Min(ageDays/365, 1)*0.3 +
			math.Max(0, 1-daysSinceLast/180)*0.3)

	historical := stats.Round2(c.TotalRevenue)

	return domain.LTVPrediction{
		CustomerID:       c.CustomerID,
		HistoricalValue:  historical,
		PredictedValue:   predicted,
		TotalLTV:         stats.Round2(historical + predicted),
		ConfidenceScore:  confidence,
		ExpectedOrders:   expectedOrders,
		ChurnProbability: stats.Round2(churn),
		RFMScore:         rfm,
	}
}

// BySource aggregates predicted lifetime value by acquisition source,
// sorted by total LTV descending.
func BySource(customers []domain.CustomerAggregate, predictions []domain.LTVPrediction) []domain.SourceLTV {
	byID := make(map[string]domain.LTVPrediction, len(predictions))
	for _, p := range predictions {
		byID[p.CustomerID] = p
	}

	type acc struct {
		count int
		total float64
	}
	groups := make(map[string]*acc)
	for _, c := range customers {
		p, ok := byID[c.CustomerID]
		if !ok {
			continue
		}
		source := c.Source
		if source == "" {
			source = "unknown"
		}
		g, ok := groups[source]
		if !ok {
			g = &acc{}
			groups[source] = g
		}
		g.count++
		g.total += p.TotalLTV
	}

	out := make([]domain.SourceLTV, 0, len(groups))
	for source, g := range groups {
		out = append(out, domain.SourceLTV{
			Source:    source,
			Customers: g.count,
			TotalLTV:  stats.Round2(g.total),
			AvgLTV:    stats.Round2(g.total / float64(g.count)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalLTV != out[j].TotalLTV {
			return out[i].TotalLTV > out[j].TotalLTV
		}
		return out[i].Source < out[j].Source
	})

	return out
}

// Distribution reports how the population spreads over the RFM segments,
// sorted by average LTV descending. Percentages always sum to 100.
func Distribution(predictions []domain.LTVPrediction) []domain.SegmentStat {
	if len(predictions) == 0 {
		return []domain.SegmentStat{}
	}

	type acc struct {
		count int
		total float64
	}
	groups := make(map[string]*acc)
	for _, p := range predictions {
		g, ok := groups[p.RFMScore.Segment]
		if !ok {
			g = &acc{}
			groups[p.RFMScore.Segment] = g
		}
		g.count++
		g.total += p.TotalLTV
	}

	out := make([]domain.SegmentStat, 0, len(groups))
	for segment, g := range groups {
		out = append(out, domain.SegmentStat{
			Segment:    segment,
			Count:      g.count,
			Percentage: float64(g.count) / float64(len(predictions)) * 100,
			AvgLTV:     stats.Round2(g.total / float64(g.count)),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgLTV != out[j].AvgLTV {
			return out[i].AvgLTV > out[j].AvgLTV
		}
		return out[i].Segment < out[j].Segment
	})

	return out
}
