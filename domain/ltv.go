package domain

// RFMScore holds the recency/frequency/monetary quintile scores for one
// customer. Combined packs them as R*100 + F*10 + M.
type RFMScore struct {
	Recency   int    `json:"recency"`
	Frequency int    `json:"frequency"`
	Monetary  int    `json:"monetary"`
	Combined  int    `json:"combined"`
	Segment   string `json:"segment"`
}

type LTVPrediction struct {
	CustomerID       string   `json:"customer_id"`
	HistoricalValue  float64  `json:"historical_value"`
	PredictedValue   float64  `json:"predicted_value"`
	TotalLTV         float64  `json:"total_ltv"`
	ConfidenceScore  float64  `json:"confidence_score"`
	Segment          string   `json:"segment"`
	ExpectedOrders   float64  `json:"expected_orders"`
	ChurnProbability float64  `json:"churn_probability"`
	RFMScore         RFMScore `json:"rfm_score"`
}

// SourceLTV aggregates predicted lifetime value by acquisition source.
type SourceLTV struct {
	Source    string  `json:"source"`
	Customers int     `json:"customers"`
	TotalLTV  float64 `json:"total_ltv"`
	AvgLTV    float64 `json:"avg_ltv"`
}

// SegmentStat is the share of customers in one RFM segment.
type SegmentStat struct {
	Segment    string  `json:"segment"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	AvgLTV     float64 `json:"avg_ltv"`
}
