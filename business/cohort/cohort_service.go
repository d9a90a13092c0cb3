package cohort

import (
	"context"
	"fmt"
	"sort"

	"marketPulse/domain"
	"marketPulse/pkg/stats"
)

const (
	GroupByWeek    = "week"
	GroupByMonth   = "month"
	GroupByQuarter = "quarter"
)

const defaultMaxPeriods = 12

type Options struct {
	GroupBy    string
	Source     string
	MaxPeriods int
}

func (o Options) withDefaults() Options {
	if o.GroupBy == "" {
		o.GroupBy = GroupByMonth
	}
	if o.MaxPeriods <= 0 {
		o.MaxPeriods = defaultMaxPeriods
	}
	return o
}

// ---- Repository interfaces ----

type OrderRepository interface {
	FindOrderRecords(ctx context.Context) ([]domain.OrderRecord, error)
}

// ---- Usecase / Service ----

type CohortService struct {
	orderRepo OrderRepository
}

func NewCohortService(orderRepo OrderRepository) *CohortService {
	return &CohortService{orderRepo: orderRepo}
}

func (s *CohortService) AnalyzeCohorts(ctx context.Context, opts Options) ([]domain.Cohort, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	orders, err := s.orderRepo.FindOrderRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order records: %w", err)
	}

	return Analyze(orders, opts), nil
}

func (s *CohortService) RetentionCurve(ctx context.Context, opts Options) ([]domain.RetentionCurvePoint, error) {
	cohorts, err := s.AnalyzeCohorts(ctx, opts)
	if err != nil {
		return nil, err
	}

	return AverageRetentionCurve(cohorts), nil
}

// ---- Pure analysis ----

type cohortBuilder struct {
	key       string
	start     domain.OrderRecord
	customers map[string]struct{}
	orders    []domain.OrderRecord
}

// Analyze groups customers by the period containing their first order and
// tracks retention and revenue per period offset. Cohorts come back sorted
// ascending by cohort date.
func Analyze(orders []domain.OrderRecord, opts Options) []domain.Cohort {
	opts = opts.withDefaults()

	if len(orders) == 0 {
		return []domain.Cohort{}
	}

	// the source filter excludes non-matching orders before grouping
	filtered := orders
	if opts.Source != "" {
		filtered = make([]domain.OrderRecord, 0, len(orders))
		for _, o := range orders {
			if o.Source == opts.Source {
				filtered = append(filtered, o)
			}
		}
	}
	if len(filtered) == 0 {
		return []domain.Cohort{}
	}

	builders := make(map[string]*cohortBuilder)
	for _, o := range filtered {
		key := cohortKey(o.FirstOrderDate, opts.GroupBy)
		b, ok := builders[key]
		if !ok {
			b = &cohortBuilder{
				key:       key,
				start:     o,
				customers: make(map[string]struct{}),
			}
			builders[key] = b
		}
		b.customers[o.CustomerID] = struct{}{}
		b.orders = append(b.orders, o)
	}

	cohorts := make([]domain.Cohort, 0, len(builders))
	for _, b := range builders {
		cohorts = append(cohorts, buildCohort(b, opts))
	}

	sort.SliceStable(cohorts, func(i, j int) bool {
		return cohorts[i].CohortDate.Before(cohorts[j].CohortDate)
	})

	return cohorts
}

func buildCohort(b *cohortBuilder, opts Options) domain.Cohort {
	start := periodStart(b.start.FirstOrderDate, opts.GroupBy)
	size := len(b.customers)

	type periodAcc struct {
		active  map[string]struct{}
		revenue float64
		orders  int
	}

	accs := make([]periodAcc, opts.MaxPeriods+1)
	for i := range accs {
		accs[i].active = make(map[string]struct{})
	}

	for _, o := range b.orders {
		p := periodIndex(start, o.OrderDate, opts.GroupBy)
		if p < 0 || p > opts.MaxPeriods {
			continue
		}
		accs[p].active[o.CustomerID] = struct{}{}
		accs[p].revenue += o.Revenue
		accs[p].orders++
	}

	periods := make([]domain.CohortPeriod, 0, len(accs))
	cumulative := 0.0
	for p, acc := range accs {
		cumulative += acc.revenue

		retention := 0.0
		avgPerCustomer := 0.0
		if size > 0 {
			retention = stats.Round1(float64(len(acc.active)) / float64(size) * 100)
			avgPerCustomer = stats.Round2(cumulative / float64(size))
		}

		periods = append(periods, domain.CohortPeriod{
			Period:                p,
			ActiveCustomers:       len(acc.active),
			Revenue:               stats.Round2(acc.revenue),
			Orders:                acc.orders,
			RetentionRate:         retention,
			CumulativeRevenue:     stats.Round2(cumulative),
			AvgRevenuePerCustomer: avgPerCustomer,
		})
	}

	return domain.Cohort{
		CohortID:       b.key,
		CohortDate:     start,
		Source:         opts.Source,
		CustomersCount: size,
		InitialRevenue: periods[0].Revenue,
		Periods:        periods,
	}
}

// AverageRetentionCurve averages the retention rate per period offset across
// all cohorts that carry that offset.
func AverageRetentionCurve(cohorts []domain.Cohort) []domain.RetentionCurvePoint {
	if len(cohorts) == 0 {
		return []domain.RetentionCurvePoint{}
	}

	maxLen := 0
	for _, c := range cohorts {
		if len(c.Periods) > maxLen {
			maxLen = len(c.Periods)
		}
	}

	curve := make([]domain.RetentionCurvePoint, 0, maxLen)
	for p := 0; p < maxLen; p++ {
		sum := 0.0
		n := 0
		for _, c := range cohorts {
			if p < len(c.Periods) {
				sum += c.Periods[p].RetentionRate
				n++
			}
		}
		avg := 0.0
		if n > 0 {
			avg = stats.Round1(sum / float64(n))
		}
		curve = append(curve, domain.RetentionCurvePoint{
			Period:       p,
			AvgRetention: avg,
			Cohorts:      n,
		})
	}

	return curve
}

// LTVCurve is the cohort's average revenue per customer over period offsets.
func LTVCurve(c domain.Cohort) []float64 {
	curve := make([]float64, 0, len(c.Periods))
	for _, p := range c.Periods {
		curve = append(curve, p.AvgRevenuePerCustomer)
	}
	return curve
}
