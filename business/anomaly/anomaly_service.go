package anomaly

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"marketPulse/domain"
	"marketPulse/pkg/metrics"
	"marketPulse/pkg/stats"
)

const (
	SensitivityLow    = "low"
	SensitivityMedium = "medium"
	SensitivityHigh   = "high"
)

// thresholds are |z-score| floors per severity tier. Each tier is strictly
// more permissive than the one above it.
type thresholds struct {
	critical float64
	warning  float64
	info     float64
}

var sensitivityThresholds = map[string]thresholds{
	SensitivityLow:    {critical: 4, warning: 3, info: 2.5},
	SensitivityMedium: {critical: 3, warning: 2.5, info: 2},
	SensitivityHigh:   {critical: 2.5, warning: 2, info: 1.5},
}

var severityRank = map[string]int{
	domain.SeverityCritical: 0,
	domain.SeverityWarning:  1,
	domain.SeverityInfo:     2,
}

type Options struct {
	Sensitivity   string
	WindowSize    int
	MinDataPoints int
	DetectSpikes  bool
	DetectDrops   bool
}

func DefaultOptions() Options {
	return Options{
		Sensitivity:   SensitivityMedium,
		WindowSize:    30,
		MinDataPoints: 14,
		DetectSpikes:  true,
		DetectDrops:   true,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if _, ok := sensitivityThresholds[o.Sensitivity]; !ok {
		o.Sensitivity = def.Sensitivity
	}
	if o.WindowSize <= 0 {
		o.WindowSize = def.WindowSize
	}
	if o.MinDataPoints <= 0 {
		o.MinDataPoints = def.MinDataPoints
	}
	// asking for neither direction means both
	if !o.DetectSpikes && !o.DetectDrops {
		o.DetectSpikes = true
		o.DetectDrops = true
	}
	return o
}

// ---- Repository interface ----

type MetricRepository interface {
	MetricSeries(ctx context.Context, metric string) ([]domain.DataPoint, error)
}

// ---- Usecase / Service ----

type AnomalyService struct {
	metricRepo MetricRepository
}

func NewAnomalyService(metricRepo MetricRepository) *AnomalyService {
	return &AnomalyService{metricRepo: metricRepo}
}

func (s *AnomalyService) DetectAnomalies(ctx context.Context, metric string, opts Options) ([]domain.Anomaly, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	series, err := s.metricRepo.MetricSeries(ctx, metric)
	if err != nil {
		return nil, fmt.Errorf("load %s series: %w", metric, err)
	}

	anomalies := Detect(series, metric, opts)
	for _, a := range anomalies {
		metrics.AnomaliesDetected.WithLabelValues(a.Metric, a.Severity).Inc()
	}
	return anomalies, nil
}

func (s *AnomalyService) DetectCorrelatedAnomalies(ctx context.Context, metricNames []string, opts Options) ([]domain.CorrelatedAnomaly, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	series := make(map[string][]domain.DataPoint, len(metricNames))
	for _, name := range metricNames {
		points, err := s.metricRepo.MetricSeries(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("load %s series: %w", name, err)
		}
		series[name] = points
	}

	return DetectCorrelated(series, opts), nil
}

func (s *AnomalyService) GenerateAlertConfig(ctx context.Context, metric string, opts Options) (domain.AlertConfig, error) {
	anomalies, err := s.DetectAnomalies(ctx, metric, opts)
	if err != nil {
		return domain.AlertConfig{}, err
	}
	return AlertConfigFromHistory(metric, anomalies), nil
}

func (s *AnomalyService) CheckAlert(ctx context.Context, cfg domain.AlertConfig, value float64, date time.Time) (*domain.Anomaly, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	baseline, err := s.metricRepo.MetricSeries(ctx, cfg.Metric)
	if err != nil {
		return nil, fmt.Errorf("load %s baseline: %w", cfg.Metric, err)
	}

	a := EvaluateAlert(cfg, baseline, value, date)
	if a != nil {
		metrics.AnomaliesDetected.WithLabelValues(a.Metric, a.Severity).Inc()
	}
	return a, nil
}

// ---- Pure detection ----

// Detect flags points whose z-score against the trailing window exceeds
// the sensitivity thresholds. Windows with zero variance never flag.
// Results come back critical first, newest first within a severity.
func Detect(series []domain.DataPoint, metric string, opts Options) []domain.Anomaly {
	opts = opts.withDefaults()

	if len(series) < opts.MinDataPoints {
		return []domain.Anomaly{}
	}

	sorted := make([]domain.DataPoint, len(series))
	copy(sorted, series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	tiers := sensitivityThresholds[opts.Sensitivity]

	anomalies := []domain.Anomaly{}
	for i := opts.WindowSize; i < len(sorted); i++ {
		window := make([]float64, opts.WindowSize)
		for j := 0; j < opts.WindowSize; j++ {
			window[j] = sorted[i-opts.WindowSize+j].Value
		}

		mean := stats.Mean(window)
		std := stats.StdDev(window)
		if std == 0 {
			continue
		}

		z := (sorted[i].Value - mean) / std
		severity := severityFor(math.Abs(z), tiers)
		if severity == "" {
			continue
		}

		direction := domain.DirectionIncrease
		if z < 0 {
			direction = domain.DirectionDecrease
		}
		if direction == domain.DirectionIncrease && !opts.DetectSpikes {
			continue
		}
		if direction == domain.DirectionDecrease && !opts.DetectDrops {
			continue
		}

		anomalies = append(anomalies, buildAnomaly(metric, sorted[i], mean, z, severity, direction))
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		ri, rj := severityRank[anomalies[i].Severity], severityRank[anomalies[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return anomalies[i].Date.After(anomalies[j].Date)
	})
	return anomalies
}

func severityFor(absZ float64, tiers thresholds) string {
	switch {
	case absZ >= tiers.critical:
		return domain.SeverityCritical
	case absZ >= tiers.warning:
		return domain.SeverityWarning
	case absZ >= tiers.info:
		return domain.SeverityInfo
	default:
		return ""
	}
}

func buildAnomaly(metric string, point domain.DataPoint, mean, z float64, severity, direction string) domain.Anomaly {
	pctChange := 0.0
	if mean != 0 {
		pctChange = (point.Value - mean) / mean * 100
	}

	a := domain.Anomaly{
		ID:               fmt.Sprintf("%s-%s", metric, point.Date.UTC().Format("2006-01-02")),
		Date:             point.Date,
		Metric:           metric,
		Value:            stats.Round2(point.Value),
		ExpectedValue:    stats.Round2(mean),
		Deviation:        stats.Round2(math.Abs(z)),
		Severity:         severity,
		Direction:        direction,
		PercentageChange: stats.Round1(pctChange),
	}
	explain(&a)
	return a
}

// DetectCorrelated runs detection per metric and reports every calendar
// date on which two or more metrics were flagged at once.
func DetectCorrelated(series map[string][]domain.DataPoint, opts Options) []domain.CorrelatedAnomaly {
	byDay := make(map[string][]domain.Anomaly)
	for metric, points := range series {
		for _, a := range Detect(points, metric, opts) {
			day := a.Date.UTC().Format("2006-01-02")
			byDay[day] = append(byDay[day], a)
		}
	}

	correlated := []domain.CorrelatedAnomaly{}
	for day, anomalies := range byDay {
		metricSet := make(map[string]bool, len(anomalies))
		for _, a := range anomalies {
			metricSet[a.Metric] = true
		}
		if len(metricSet) < 2 {
			continue
		}

		names := make([]string, 0, len(metricSet))
		for name := range metricSet {
			names = append(names, name)
		}
		sort.Strings(names)

		sort.SliceStable(anomalies, func(i, j int) bool {
			return anomalies[i].Metric < anomalies[j].Metric
		})

		worst := domain.SeverityInfo
		for _, a := range anomalies {
			if severityRank[a.Severity] < severityRank[worst] {
				worst = a.Severity
			}
		}

		date, _ := time.Parse("2006-01-02", day)
		correlated = append(correlated, domain.CorrelatedAnomaly{
			Date:      date,
			Metrics:   names,
			Severity:  worst,
			Anomalies: anomalies,
		})
	}

	sort.SliceStable(correlated, func(i, j int) bool {
		return correlated[i].Date.Before(correlated[j].Date)
	})
	return correlated
}

// AlertConfigFromHistory derives a reusable alert rule from a metric's
// historical anomaly set.
func AlertConfigFromHistory(metric string, history []domain.Anomaly) domain.AlertConfig {
	if len(history) == 0 {
		return domain.AlertConfig{
			Metric:    metric,
			Threshold: 2,
			Direction: "both",
			Severity:  domain.SeverityWarning,
		}
	}

	deviationSum := 0.0
	increases := 0
	decreases := 0
	severityCounts := make(map[string]int)
	for _, a := range history {
		deviationSum += a.Deviation
		if a.Direction == domain.DirectionIncrease {
			increases++
		} else {
			decreases++
		}
		severityCounts[a.Severity]++
	}

	direction := "both"
	if increases >= 2*decreases && increases > 0 {
		direction = "above"
	} else if decreases >= 2*increases && decreases > 0 {
		direction = "below"
	}

	severity := domain.SeverityWarning
	best := 0
	// iterate in fixed rank order so ties resolve toward the more severe label
	for _, s := range []string{domain.SeverityCritical, domain.SeverityWarning, domain.SeverityInfo} {
		if severityCounts[s] > best {
			best = severityCounts[s]
			severity = s
		}
	}

	return domain.AlertConfig{
		Metric:    metric,
		Threshold: stats.Round2(deviationSum / float64(len(history))),
		Direction: direction,
		Severity:  severity,
	}
}

// alert baseline is the trailing month of observations
const alertBaselinePoints = 30

// EvaluateAlert checks one new value against a stored alert rule and the
// metric's recent baseline. It returns nil when the value is unremarkable.
func EvaluateAlert(cfg domain.AlertConfig, baseline []domain.DataPoint, value float64, date time.Time) *domain.Anomaly {
	if len(baseline) == 0 {
		return nil
	}

	sorted := make([]domain.DataPoint, len(baseline))
	copy(sorted, baseline)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	if len(sorted) > alertBaselinePoints {
		sorted = sorted[len(sorted)-alertBaselinePoints:]
	}

	values := make([]float64, len(sorted))
	for i, p := range sorted {
		values[i] = p.Value
	}

	mean := stats.Mean(values)
	std := stats.StdDev(values)
	if std == 0 {
		return nil
	}

	z := (value - mean) / std
	if math.Abs(z) < cfg.Threshold {
		return nil
	}
	if cfg.Direction == "above" && z < 0 {
		return nil
	}
	if cfg.Direction == "below" && z > 0 {
		return nil
	}

	severity := severityFor(math.Abs(z), sensitivityThresholds[SensitivityMedium])
	if severity == "" {
		severity = cfg.Severity
	}

	direction := domain.DirectionIncrease
	if z < 0 {
		direction = domain.DirectionDecrease
	}

	a := buildAnomaly(cfg.Metric, domain.DataPoint{Date: date, Value: value}, mean, z, severity, direction)
	return &a
}
