package domain

import "time"

type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type ForecastResult struct {
	Date       time.Time `json:"date"`
	Predicted  float64   `json:"predicted"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
	Trend      float64   `json:"trend"`
	Seasonal   float64   `json:"seasonal"`
}

type ForecastSummary struct {
	HistoricalAvg       float64 `json:"historical_avg"`
	ForecastedTotal     float64 `json:"forecasted_total"`
	Growth              float64 `json:"growth"`
	GrowthPercentage    float64 `json:"growth_percentage"`
	Trend               string  `json:"trend"`
	SeasonalityStrength float64 `json:"seasonality_strength"`
	ConfidenceInterval  float64 `json:"confidence_interval"`
}

// ForecastAccuracy compares forecasted values against realized actuals.
type ForecastAccuracy struct {
	MatchedPoints int     `json:"matched_points"`
	MAPE          float64 `json:"mape"`
	RMSE          float64 `json:"rmse"`
	MAE           float64 `json:"mae"`
	Accuracy      float64 `json:"accuracy"`
}

type AdSpendRecommendation struct {
	RecommendedSpend float64 `json:"recommended_spend"`
	ExpectedRevenue  float64 `json:"expected_revenue"`
	TargetRoas       float64 `json:"target_roas"`
	HistoricalRoas   float64 `json:"historical_roas"`
	Adjustment       float64 `json:"adjustment"`
}
