package forecast

import (
	"math"
	"testing"
	"time"

	"marketPulse/domain"
)

func daily(start time.Time, values []float64) []domain.TimeSeriesPoint {
	series := make([]domain.TimeSeriesPoint, 0, len(values))
	for i, v := range values {
		series = append(series, domain.TimeSeriesPoint{
			Date:  start.AddDate(0, 0, i),
			Value: v,
		})
	}
	return series
}

var seriesStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestForecastTooFewPoints(t *testing.T) {
	series := []domain.TimeSeriesPoint{
		{Date: seriesStart, Value: 100},
		{Date: seriesStart.AddDate(0, 1, 0), Value: 100},
	}

	forecast, summary := Forecast(series, Options{Periods: 6, PeriodType: PeriodMonth})
	if len(forecast) != 0 {
		t.Fatalf("expected empty forecast, got %d points", len(forecast))
	}
	if summary.Trend != TrendFlat {
		t.Fatalf("trend: got %q, want flat", summary.Trend)
	}
	if summary.ForecastedTotal != 0 || summary.HistoricalAvg != 0 {
		t.Fatalf("expected all-zero summary, got %+v", summary)
	}
}

func TestForecastMarginWidens(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		// upward trend with noise-free weekly wobble
		values[i] = 100 + 2*float64(i) + 10*float64(i%7)
	}

	forecast, _ := Forecast(daily(seriesStart, values), Options{
		Periods:         14,
		PeriodType:      PeriodDay,
		ConfidenceLevel: 0.95,
	})
	if len(forecast) != 14 {
		t.Fatalf("forecast length: got %d, want 14", len(forecast))
	}

	prevMargin := -1.0
	for i, f := range forecast {
		if f.LowerBound > f.Predicted || f.Predicted > f.UpperBound {
			t.Fatalf("point %d: bounds do not bracket prediction: %+v", i, f)
		}
		margin := f.UpperBound - f.Predicted
		if margin < prevMargin-1e-9 {
			t.Fatalf("point %d: margin shrank from %v to %v", i, prevMargin, margin)
		}
		prevMargin = margin
	}
}

func TestForecastTrendDirection(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	flat := make([]float64, 30)
	for i := range up {
		up[i] = 100 + 5*float64(i)
		down[i] = 300 - 5*float64(i)
		flat[i] = 100
	}

	if _, s := Forecast(daily(seriesStart, up), Options{Periods: 5, PeriodType: PeriodDay}); s.Trend != TrendUp {
		t.Fatalf("up series: got %q", s.Trend)
	}
	if _, s := Forecast(daily(seriesStart, down), Options{Periods: 5, PeriodType: PeriodDay}); s.Trend != TrendDown {
		t.Fatalf("down series: got %q", s.Trend)
	}
	if _, s := Forecast(daily(seriesStart, flat), Options{Periods: 5, PeriodType: PeriodDay}); s.Trend != TrendFlat {
		t.Fatalf("flat series: got %q", s.Trend)
	}
}

func TestForecastNonNegative(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 50 - 5*float64(i) // crosses zero
	}

	forecast, _ := Forecast(daily(seriesStart, values), Options{Periods: 10, PeriodType: PeriodDay})
	for i, f := range forecast {
		if f.Predicted < 0 || f.LowerBound < 0 {
			t.Fatalf("point %d: negative prediction or bound: %+v", i, f)
		}
	}
}

func TestDetectSeasonalPeriod(t *testing.T) {
	// strong period-7 signal
	values := make([]float64, 56)
	for i := range values {
		values[i] = 100 + 20*float64(i%7)
	}
	if sp := detectSeasonalPeriod(values, PeriodDay); sp != 7 {
		t.Fatalf("seasonal period: got %d, want 7", sp)
	}

	// short series falls back to the fixed default
	if sp := detectSeasonalPeriod(values[:10], PeriodDay); sp != 7 {
		t.Fatalf("short-series default: got %d, want 7", sp)
	}
	if sp := detectSeasonalPeriod(values[:10], PeriodMonth); sp != 12 {
		t.Fatalf("month default: got %d, want 12", sp)
	}
}

func TestDecomposeSeasonalCentered(t *testing.T) {
	values := make([]float64, 28)
	for i := range values {
		values[i] = 100 + 10*float64(i%7)
	}

	dec := decompose(values, 7)
	sum := 0.0
	for _, s := range dec.seasonal {
		sum += s
	}
	if math.Abs(sum) > 1e-9 {
		t.Fatalf("seasonal component not centered: sum=%v", sum)
	}
}

func TestEvaluatePerfectForecast(t *testing.T) {
	forecast := []domain.ForecastResult{
		{Date: seriesStart, Predicted: 100},
		{Date: seriesStart.AddDate(0, 0, 1), Predicted: 200},
	}
	actuals := []domain.TimeSeriesPoint{
		{Date: seriesStart, Value: 100},
		{Date: seriesStart.AddDate(0, 0, 1), Value: 200},
		{Date: seriesStart.AddDate(0, 0, 9), Value: 999}, // unmatched
	}

	acc := Evaluate(forecast, actuals)
	if acc.MatchedPoints != 2 {
		t.Fatalf("matched: got %d, want 2", acc.MatchedPoints)
	}
	if acc.MAPE != 0 || acc.RMSE != 0 || acc.MAE != 0 {
		t.Fatalf("perfect forecast must have zero errors: %+v", acc)
	}
	if acc.Accuracy != 100 {
		t.Fatalf("accuracy: got %v, want 100", acc.Accuracy)
	}
}

func TestEvaluateNoOverlap(t *testing.T) {
	forecast := []domain.ForecastResult{{Date: seriesStart, Predicted: 100}}
	actuals := []domain.TimeSeriesPoint{{Date: seriesStart.AddDate(0, 0, 5), Value: 100}}
	if acc := Evaluate(forecast, actuals); acc.MatchedPoints != 0 || acc.Accuracy != 0 {
		t.Fatalf("expected zero accuracy result, got %+v", acc)
	}
}

func TestRecommendAdSpend(t *testing.T) {
	summary := domain.ForecastSummary{ForecastedTotal: 30000}

	// historical roas equals target: spend = total / target
	rec := RecommendAdSpend(summary, 5000, 15000, 3)
	if rec.RecommendedSpend != 10000 {
		t.Fatalf("recommended spend: got %v, want 10000", rec.RecommendedSpend)
	}
	if rec.ExpectedRevenue != 30000 {
		t.Fatalf("expected revenue: got %v, want 30000", rec.ExpectedRevenue)
	}

	// account over-performs: adjustment caps at 1.5
	rec = RecommendAdSpend(summary, 1000, 9000, 3)
	if rec.Adjustment != 1.5 {
		t.Fatalf("adjustment: got %v, want 1.5", rec.Adjustment)
	}

	// no historical spend: neutral adjustment
	rec = RecommendAdSpend(summary, 0, 0, 3)
	if rec.Adjustment != 1 || rec.HistoricalRoas != 0 {
		t.Fatalf("no-spend case: got %+v", rec)
	}
}
