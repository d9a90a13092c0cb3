package domain

import "time"

// CampaignStat is the persisted per-day campaign performance row synced
// from the ad platforms.
type CampaignStat struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CampaignID  string    `gorm:"column:campaign_id;not null;index" json:"campaign_id"`
	Platform    string    `gorm:"column:platform;not null" json:"platform"`
	Date        time.Time `gorm:"column:date;not null;index" json:"date"`
	Spend       float64   `gorm:"column:spend;not null" json:"spend"`
	Revenue     float64   `gorm:"column:revenue;not null" json:"revenue"`
	Conversions int       `gorm:"column:conversions;not null" json:"conversions"`
	Clicks      int       `gorm:"column:clicks;not null" json:"clicks"`
	Impressions int       `gorm:"column:impressions;not null" json:"impressions"`
}

// CampaignPerformance is the shaped analytics input with derived ratios.
type CampaignPerformance struct {
	CampaignID     string  `json:"campaign_id"`
	Platform       string  `json:"platform"`
	Spend          float64 `json:"spend"`
	Revenue        float64 `json:"revenue"`
	Conversions    int     `json:"conversions"`
	Clicks         int     `json:"clicks"`
	Impressions    int     `json:"impressions"`
	Roas           float64 `json:"roas"`
	CPA            float64 `json:"cpa"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
}

const (
	PriorityIncrease = "increase"
	PriorityMaintain = "maintain"
	PriorityDecrease = "decrease"
	PriorityPause    = "pause"
)

type BudgetAllocation struct {
	CampaignID         string  `json:"campaign_id"`
	Platform           string  `json:"platform"`
	CurrentSpend       float64 `json:"current_spend"`
	RecommendedSpend   float64 `json:"recommended_spend"`
	SpendChange        float64 `json:"spend_change"`
	SpendChangePercent float64 `json:"spend_change_percent"`
	ExpectedRoas       float64 `json:"expected_roas"`
	ExpectedRevenue    float64 `json:"expected_revenue"`
	Priority           string  `json:"priority"`
	Reason             string  `json:"reason"`
	Confidence         float64 `json:"confidence"`
}

type PlatformBudget struct {
	Platform   string  `json:"platform"`
	Budget     float64 `json:"budget"`
	Percentage float64 `json:"percentage"`
}

type BudgetSummary struct {
	TotalBudget       float64 `json:"total_budget"`
	CurrentSpend      float64 `json:"current_spend"`
	RecommendedSpend  float64 `json:"recommended_spend"`
	CurrentRoas       float64 `json:"current_roas"`
	ExpectedRoas      float64 `json:"expected_roas"`
	OptimizationScore float64 `json:"optimization_score"`
}

type BudgetOptimizationResult struct {
	Allocations []BudgetAllocation `json:"allocations"`
	Summary     BudgetSummary      `json:"summary"`
	Platforms   []PlatformBudget   `json:"platforms"`
	Insights    []string           `json:"insights"`
}

// AudienceBid is a fixed-rule bid delta suggestion for one audience bucket.
type AudienceBid struct {
	Audience     string  `json:"audience"`
	DeltaPercent float64 `json:"delta_percent"`
	Reason       string  `json:"reason"`
}

type BidAdjustment struct {
	CampaignID        string        `json:"campaign_id"`
	CurrentCPC        float64       `json:"current_cpc"`
	IdealCPC          float64       `json:"ideal_cpc"`
	AdjustmentPercent float64       `json:"adjustment_percent"`
	Reason            string        `json:"reason"`
	Audiences         []AudienceBid `json:"audiences,omitempty"`
}
