package postgres

import (
	"context"
	"fmt"

	"marketPulse/domain"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	DB *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{
		DB: db,
	}
}

type campaignTotals struct {
	CampaignID  string
	Platform    string
	Spend       float64
	Revenue     float64
	Conversions int
	Clicks      int
	Impressions int
}

// FindPerformance aggregates the synced per-day stats into one row per
// campaign with derived ratios. Campaigns with no spend report zero ROAS;
// sentinel formatting belongs to callers.
func (r *CampaignRepository) FindPerformance(ctx context.Context) ([]domain.CampaignPerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []campaignTotals
	err := r.DB.WithContext(ctx).
		Model(&domain.CampaignStat{}).
		Select("campaign_id, platform, sum(spend) as spend, sum(revenue) as revenue, sum(conversions) as conversions, sum(clicks) as clicks, sum(impressions) as impressions").
		Group("campaign_id, platform").
		Order("campaign_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate campaign stats: %w", err)
	}

	campaigns := make([]domain.CampaignPerformance, 0, len(rows))
	for _, row := range rows {
		c := domain.CampaignPerformance{
			CampaignID:  row.CampaignID,
			Platform:    row.Platform,
			Spend:       row.Spend,
			Revenue:     row.Revenue,
			Conversions: row.Conversions,
			Clicks:      row.Clicks,
			Impressions: row.Impressions,
		}
		if row.Spend > 0 {
			c.Roas = row.Revenue / row.Spend
		}
		if row.Conversions > 0 {
			c.CPA = row.Spend / float64(row.Conversions)
		}
		if row.Impressions > 0 {
			c.CTR = float64(row.Clicks) / float64(row.Impressions) * 100
		}
		if row.Clicks > 0 {
			c.ConversionRate = float64(row.Conversions) / float64(row.Clicks) * 100
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, nil
}

// DailyTotals returns per-day spend, revenue, conversion and click sums
// across all campaigns, ordered by date.
func (r *CampaignRepository) DailyTotals(ctx context.Context) ([]domain.CampaignStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.CampaignStat
	err := r.DB.WithContext(ctx).
		Model(&domain.CampaignStat{}).
		Select("date_trunc('day', date) as date, sum(spend) as spend, sum(revenue) as revenue, sum(conversions) as conversions, sum(clicks) as clicks, sum(impressions) as impressions").
		Group("date_trunc('day', date)").
		Order("date asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load daily campaign totals: %w", err)
	}

	return rows, nil
}
