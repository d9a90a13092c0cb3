package anomaly

import (
	"testing"
	"time"

	"marketPulse/domain"
)

var day0 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func points(values []float64) []domain.DataPoint {
	series := make([]domain.DataPoint, 0, len(values))
	for i, v := range values {
		series = append(series, domain.DataPoint{Date: day0.AddDate(0, 0, i), Value: v})
	}
	return series
}

// alternating 90/110 gives mean 100 and population stdDev 10
func noisyBaseline(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		if i%2 == 0 {
			values[i] = 90
		} else {
			values[i] = 110
		}
	}
	return values
}

func TestDetectTooFewPoints(t *testing.T) {
	series := points(noisyBaseline(10))
	if got := Detect(series, "revenue", Options{MinDataPoints: 14}); len(got) != 0 {
		t.Fatalf("expected no anomalies below min points, got %d", len(got))
	}
}

func TestDetectZeroVarianceWindowSkipped(t *testing.T) {
	values := make([]float64, 21)
	for i := 0; i < 20; i++ {
		values[i] = 100
	}
	values[20] = 400

	got := Detect(points(values), "revenue", Options{WindowSize: 20, MinDataPoints: 14})
	if len(got) != 0 {
		t.Fatalf("zero-variance window must never flag, got %d anomalies", len(got))
	}
}

func TestDetectSpikeIsCritical(t *testing.T) {
	values := append(noisyBaseline(20), 400)

	got := Detect(points(values), "revenue", Options{WindowSize: 20, MinDataPoints: 14, Sensitivity: SensitivityMedium})
	if len(got) != 1 {
		t.Fatalf("expected exactly one anomaly, got %d", len(got))
	}

	a := got[0]
	if a.Severity != domain.SeverityCritical {
		t.Fatalf("severity: got %q, want critical", a.Severity)
	}
	if a.Deviation != 30 {
		t.Fatalf("deviation: got %v, want 30", a.Deviation)
	}
	if a.Direction != domain.DirectionIncrease {
		t.Fatalf("direction: got %q, want increase", a.Direction)
	}
	if a.ExpectedValue != 100 {
		t.Fatalf("expected value: got %v, want 100", a.ExpectedValue)
	}
	if a.ID != "revenue-2024-03-21" {
		t.Fatalf("id: got %q", a.ID)
	}
	if a.Description == "" || len(a.PossibleCauses) != 3 || len(a.SuggestedActions) != 3 {
		t.Fatalf("critical anomaly must carry full explanations: %+v", a)
	}
}

func TestDetectDirectionFilter(t *testing.T) {
	values := append(noisyBaseline(20), 400)
	opts := Options{WindowSize: 20, MinDataPoints: 14, DetectDrops: true}

	if got := Detect(points(values), "revenue", opts); len(got) != 0 {
		t.Fatalf("drops-only detection flagged a spike: %d anomalies", len(got))
	}
}

func TestSeverityTierOrdering(t *testing.T) {
	for name, tiers := range sensitivityThresholds {
		if !(tiers.critical > tiers.warning && tiers.warning > tiers.info) {
			t.Fatalf("%s: tiers not strictly decreasing: %+v", name, tiers)
		}
	}

	tiers := sensitivityThresholds[SensitivityMedium]
	cases := []struct {
		z    float64
		want string
	}{
		{3.5, domain.SeverityCritical},
		{3.0, domain.SeverityCritical},
		{2.7, domain.SeverityWarning},
		{2.1, domain.SeverityInfo},
		{1.9, ""},
	}
	for _, c := range cases {
		if got := severityFor(c.z, tiers); got != c.want {
			t.Fatalf("severityFor(%v): got %q, want %q", c.z, got, c.want)
		}
	}
}

func TestDetectSortOrder(t *testing.T) {
	// two spikes of different magnitude, later one smaller
	values := append(noisyBaseline(20), 400)
	values = append(values, noisyBaseline(20)...)
	values = append(values, 128) // |z| between warning and critical for most windows

	got := Detect(points(values), "revenue", Options{WindowSize: 20, MinDataPoints: 14})
	if len(got) < 2 {
		t.Fatalf("expected at least two anomalies, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		ri, rj := severityRank[got[i-1].Severity], severityRank[got[i].Severity]
		if ri > rj {
			t.Fatalf("anomalies not sorted critical-first at %d", i)
		}
		if ri == rj && got[i-1].Date.Before(got[i].Date) {
			t.Fatalf("anomalies not sorted date-descending within severity at %d", i)
		}
	}
}

func TestDetectCorrelated(t *testing.T) {
	spike := append(noisyBaseline(20), 400)
	quiet := noisyBaseline(21)

	series := map[string][]domain.DataPoint{
		"revenue":  points(spike),
		"orders":   points(spike),
		"ad_spend": points(quiet),
	}

	got := DetectCorrelated(series, Options{WindowSize: 20, MinDataPoints: 14})
	if len(got) != 1 {
		t.Fatalf("expected one correlated date, got %d", len(got))
	}

	c := got[0]
	if len(c.Metrics) != 2 || c.Metrics[0] != "orders" || c.Metrics[1] != "revenue" {
		t.Fatalf("metrics: got %v", c.Metrics)
	}
	if c.Severity != domain.SeverityCritical {
		t.Fatalf("severity: got %q, want critical", c.Severity)
	}
	if len(c.Anomalies) != 2 {
		t.Fatalf("anomalies: got %d, want 2", len(c.Anomalies))
	}
}

func TestAlertConfigFromHistory(t *testing.T) {
	history := []domain.Anomaly{
		{Deviation: 3, Direction: domain.DirectionIncrease, Severity: domain.SeverityCritical},
		{Deviation: 2.5, Direction: domain.DirectionIncrease, Severity: domain.SeverityWarning},
		{Deviation: 2, Direction: domain.DirectionIncrease, Severity: domain.SeverityWarning},
		{Deviation: 2.5, Direction: domain.DirectionDecrease, Severity: domain.SeverityWarning},
	}

	cfg := AlertConfigFromHistory("revenue", history)
	if cfg.Threshold != 2.5 {
		t.Fatalf("threshold: got %v, want 2.5", cfg.Threshold)
	}
	// 3 increases vs 1 decrease clears the 2:1 rule
	if cfg.Direction != "above" {
		t.Fatalf("direction: got %q, want above", cfg.Direction)
	}
	if cfg.Severity != domain.SeverityWarning {
		t.Fatalf("severity: got %q, want warning", cfg.Severity)
	}
}

func TestAlertConfigEmptyHistory(t *testing.T) {
	cfg := AlertConfigFromHistory("roas", nil)
	if cfg.Threshold != 2 || cfg.Direction != "both" || cfg.Severity != domain.SeverityWarning {
		t.Fatalf("default config: got %+v", cfg)
	}
}

func TestEvaluateAlert(t *testing.T) {
	baseline := points(noisyBaseline(30))
	cfg := domain.AlertConfig{
		Metric:    "revenue",
		Threshold: 2,
		Direction: "both",
		Severity:  domain.SeverityWarning,
	}
	when := day0.AddDate(0, 0, 40)

	if a := EvaluateAlert(cfg, baseline, 105, when); a != nil {
		t.Fatalf("unremarkable value flagged: %+v", a)
	}

	a := EvaluateAlert(cfg, baseline, 400, when)
	if a == nil {
		t.Fatal("spike not flagged")
	}
	if a.Severity != domain.SeverityCritical {
		t.Fatalf("severity: got %q, want critical", a.Severity)
	}
	if a.Direction != domain.DirectionIncrease {
		t.Fatalf("direction: got %q", a.Direction)
	}

	cfg.Direction = "below"
	if a := EvaluateAlert(cfg, baseline, 400, when); a != nil {
		t.Fatalf("below-only alert flagged an increase: %+v", a)
	}
}

func TestEvaluateAlertZeroVariance(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 100
	}
	cfg := domain.AlertConfig{Metric: "orders", Threshold: 2, Direction: "both", Severity: domain.SeverityWarning}
	if a := EvaluateAlert(cfg, points(flat), 400, day0); a != nil {
		t.Fatalf("zero-variance baseline flagged: %+v", a)
	}
}
