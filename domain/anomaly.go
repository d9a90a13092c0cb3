package domain

import "time"

// DataPoint is one observation of a generic numeric metric.
type DataPoint struct {
	Date     time.Time      `json:"date"`
	Value    float64        `json:"value"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

type Anomaly struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	Metric           string    `json:"metric"`
	Value            float64   `json:"value"`
	ExpectedValue    float64   `json:"expected_value"`
	Deviation        float64   `json:"deviation"`
	Severity         string    `json:"severity"`
	Direction        string    `json:"direction"`
	PercentageChange float64   `json:"percentage_change"`
	Description      string    `json:"description"`
	PossibleCauses   []string  `json:"possible_causes"`
	SuggestedActions []string  `json:"suggested_actions"`
}

// CorrelatedAnomaly reports a calendar date on which two or more metrics
// were flagged at once.
type CorrelatedAnomaly struct {
	Date      time.Time `json:"date"`
	Metrics   []string  `json:"metrics"`
	Severity  string    `json:"severity"`
	Anomalies []Anomaly `json:"anomalies"`
}

// AlertConfig is derived from a metric's historical anomalies and drives
// one-shot checks of incoming values.
type AlertConfig struct {
	Metric    string  `json:"metric"`
	Threshold float64 `json:"threshold"`
	Direction string  `json:"direction"` // above, below or both
	Severity  string  `json:"severity"`
}
