package forecast

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
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// slope magnitude below which the trend direction reads as flat
const flatSlopeThreshold = 0.01

type Options struct {
	Periods         int
	PeriodType      string
	ConfidenceLevel float64
	// SeasonalPeriod forces the seasonal lag; zero means autodetect.
	SeasonalPeriod int
}

func DefaultOptions() Options {
	return Options{
		Periods:         12,
		PeriodType:      PeriodMonth,
		ConfidenceLevel: 0.95,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Periods <= 0 {
		o.Periods = def.Periods
	}
	if o.PeriodType == "" {
		o.PeriodType = def.PeriodType
	}
	if o.ConfidenceLevel <= 0 {
		o.ConfidenceLevel = def.ConfidenceLevel
	}
	return o
}

// ---- Repository interfaces ----

type RevenueRepository interface {
	RevenueSeries(ctx context.Context) ([]domain.TimeSeriesPoint, error)
}

type PerformanceRepository interface {
	FindPerformance(ctx context.Context) ([]domain.CampaignPerformance, error)
}

// ---- Usecase / Service ----

type ForecastService struct {
	revenueRepo  RevenueRepository
	campaignRepo PerformanceRepository
}

func NewForecastService(revenueRepo RevenueRepository, campaignRepo PerformanceRepository) *ForecastService {
	return &ForecastService{revenueRepo: revenueRepo, campaignRepo: campaignRepo}
}

func (s *ForecastService) ForecastRevenue(ctx context.Context, opts Options) ([]domain.ForecastResult, domain.ForecastSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ForecastSummary{}, fmt.Errorf("context error: %w", err)
	}

	series, err := s.revenueRepo.RevenueSeries(ctx)
	if err != nil {
		return nil, domain.ForecastSummary{}, fmt.Errorf("load revenue series: %w", err)
	}

	forecast, summary := Forecast(series, opts)
	return forecast, summary, nil
}

// RecommendSpend sizes the ad budget for the forecast horizon from the
// forecasted revenue and the account's historical ROAS.
func (s *ForecastService) RecommendSpend(ctx context.Context, opts Options, targetRoas float64) (domain.AdSpendRecommendation, error) {
	_, summary, err := s.ForecastRevenue(ctx, opts)
	if err != nil {
		return domain.AdSpendRecommendation{}, err
	}

	campaigns, err := s.campaignRepo.FindPerformance(ctx)
	if err != nil {
		return domain.AdSpendRecommendation{}, fmt.Errorf("load campaign performance: %w", err)
	}

	spend := 0.0
	revenue := 0.0
	for _, c := range campaigns {
		spend += c.Spend
		revenue += c.Revenue
	}

	return RecommendAdSpend(summary, spend, revenue, targetRoas), nil
}

// ---- Pure forecasting ----

// Forecast decomposes the series into trend, seasonal and residual parts
// and projects it forward with confidence bands that widen over the
// horizon. Series with fewer than three points yield an empty forecast and
// an all-zero flat summary.
func Forecast(series []domain.TimeSeriesPoint, opts Options) ([]domain.ForecastResult, domain.ForecastSummary) {
	opts = opts.withDefaults()

	if len(series) < 3 {
		return []domain.ForecastResult{}, domain.ForecastSummary{Trend: TrendFlat}
	}

	sorted := make([]domain.TimeSeriesPoint, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	n := len(sorted)
	values := make([]float64, n)
	for i, p := range sorted {
		values[i] = p.Value
	}

	sp := opts.SeasonalPeriod
	if sp <= 0 {
		sp = detectSeasonalPeriod(values, opts.PeriodType)
	}
	if sp >= n {
		sp = n / 2
	}
	if sp < 2 {
		sp = 2
	}

	dec := decompose(values, sp)

	slope := stats.OLSSlope(dec.trend)
	gf := growthFactor(dec.trend, slope)

	z := stats.ZValue(opts.ConfidenceLevel)
	residStd := stats.StdDev(dec.residual)

	lastTrend := dec.trend[n-1]
	lastDate := sorted[n-1].Date

	forecast := make([]domain.ForecastResult, 0, opts.Periods)
	total := 0.0
	for i := 1; i <= opts.Periods; i++ {
		trendValue := lastTrend + slope*float64(i)*gf
		seasonalFactor := dec.seasonal[(n+i-1)%sp]
		predicted := math.Max(0, trendValue+seasonalFactor)
		margin := z * residStd * math.Sqrt(1+float64(i)/float64(n))

		total += predicted
		forecast = append(forecast, domain.ForecastResult{
			Date:       stepDate(lastDate, opts.PeriodType, i),
			Predicted:  stats.Round2(predicted),
			LowerBound: stats.Round2(math.Max(0, predicted-margin)),
			UpperBound: stats.Round2(predicted + margin),
			Trend:      stats.Round2(trendValue),
			Seasonal:   stats.Round2(seasonalFactor),
		})
	}

	return forecast, buildSummary(values, dec, slope, total, opts, z, residStd)
}

func buildSummary(values []float64, dec decomposition, slope, total float64, opts Options, z, residStd float64) domain.ForecastSummary {
	historicalAvg := stats.Mean(values)

	avgForecast := total / float64(opts.Periods)
	growth := avgForecast - historicalAvg
	growthPct := 0.0
	if historicalAvg != 0 {
		growthPct = growth / historicalAvg * 100
	}

	trend := TrendFlat
	if slope > flatSlopeThreshold {
		trend = TrendUp
	} else if slope < -flatSlopeThreshold {
		trend = TrendDown
	}

	return domain.ForecastSummary{
		HistoricalAvg:       stats.Round2(historicalAvg),
		ForecastedTotal:     stats.Round2(total),
		Growth:              stats.Round2(growth),
		GrowthPercentage:    stats.Round1(growthPct),
		Trend:               trend,
		SeasonalityStrength: seasonalityStrength(dec.seasonal),
		ConfidenceInterval:  stats.Round2(z * residStd),
	}
}

func seasonalityStrength(seasonal []float64) float64 {
	if len(seasonal) == 0 {
		return 0
	}
	minV, maxV := seasonal[0], seasonal[0]
	absSum := 0.0
	for _, s := range seasonal {
		if s < minV {
			minV = s
		}
		if s > maxV {
			maxV = s
		}
		absSum += math.Abs(s)
	}
	meanAbs := absSum / float64(len(seasonal))
	if meanAbs == 0 {
		return 0
	}
	return stats.Round2(math.Min(1, (maxV-minV)/(meanAbs*4)))
}

func stepDate(from time.Time, periodType string, steps int) time.Time {
	switch periodType {
	case PeriodDay:
		return from.AddDate(0, 0, steps)
	case PeriodWeek:
		return from.AddDate(0, 0, 7*steps)
	default:
		return from.AddDate(0, steps, 0)
	}
}

// Evaluate compares a past forecast against realized actuals matched by
// calendar date.
func Evaluate(forecast []domain.ForecastResult, actuals []domain.TimeSeriesPoint) domain.ForecastAccuracy {
	byDay := make(map[string]float64, len(actuals))
	for _, a := range actuals {
		byDay[a.Date.UTC().Format("2006-01-02")] = a.Value
	}

	matched := 0
	absPctSum := 0.0
	pctPoints := 0
	sqSum := 0.0
	absSum := 0.0
	for _, f := range forecast {
		actual, ok := byDay[f.Date.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		matched++
		err := actual - f.Predicted
		sqSum += err * err
		absSum += math.Abs(err)
		if actual != 0 {
			absPctSum += math.Abs(err / actual)
			pctPoints++
		}
	}

	if matched == 0 {
		return domain.ForecastAccuracy{}
	}

	mape := 0.0
	if pctPoints > 0 {
		mape = absPctSum / float64(pctPoints) * 100
	}

	return domain.ForecastAccuracy{
		MatchedPoints: matched,
		MAPE:          stats.Round1(mape),
		RMSE:          stats.Round2(math.Sqrt(sqSum / float64(matched))),
		MAE:           stats.Round2(absSum / float64(matched)),
		Accuracy:      stats.Round1(math.Max(0, 100-mape)),
	}
}

// RecommendAdSpend derives the spend that would produce the forecasted
// revenue at the target ROAS, scaled by how the account historically
// performed against that target (capped at 1.5x).
func RecommendAdSpend(summary domain.ForecastSummary, historicalSpend, historicalRevenue, targetRoas float64) domain.AdSpendRecommendation {
	if targetRoas <= 0 {
		targetRoas = 3
	}

	historicalRoas := 0.0
	if historicalSpend > 0 {
		historicalRoas = historicalRevenue / historicalSpend
	}

	adjustment := 1.0
	if historicalRoas > 0 {
		adjustment = math.Min(historicalRoas/targetRoas, 1.5)
	}

	recommended := stats.Round2(summary.ForecastedTotal / targetRoas * adjustment)

	return domain.AdSpendRecommendation{
		RecommendedSpend: recommended,
		ExpectedRevenue:  stats.Round2(recommended * targetRoas),
		TargetRoas:       targetRoas,
		HistoricalRoas:   stats.Round2(historicalRoas),
		Adjustment:       stats.Round2(adjustment),
	}
}
