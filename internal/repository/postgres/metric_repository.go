package postgres

import (
	"context"
	"fmt"

	"marketPulse/domain"
)

// MetricRepository routes named metrics to the order and campaign stores
// so the anomaly detector can treat everything as a generic series.
type MetricRepository struct {
	orderRepo    *OrderRepository
	campaignRepo *CampaignRepository
}

func NewMetricRepository(orderRepo *OrderRepository, campaignRepo *CampaignRepository) *MetricRepository {
	return &MetricRepository{
		orderRepo:    orderRepo,
		campaignRepo: campaignRepo,
	}
}

func (r *MetricRepository) MetricSeries(ctx context.Context, metric string) ([]domain.DataPoint, error) {
	switch metric {
	case "revenue":
		series, err := r.orderRepo.RevenueSeries(ctx)
		if err != nil {
			return nil, err
		}
		return toDataPoints(series), nil

	case "orders":
		series, err := r.orderRepo.OrderCountSeries(ctx)
		if err != nil {
			return nil, err
		}
		return toDataPoints(series), nil

	case "ad_spend", "roas", "conversion_rate":
		days, err := r.campaignRepo.DailyTotals(ctx)
		if err != nil {
			return nil, err
		}
		return campaignMetric(days, metric), nil

	default:
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}
}

func toDataPoints(series []domain.TimeSeriesPoint) []domain.DataPoint {
	points := make([]domain.DataPoint, 0, len(series))
	for _, p := range series {
		points = append(points, domain.DataPoint{Date: p.Date, Value: p.Value})
	}
	return points
}

func campaignMetric(days []domain.CampaignStat, metric string) []domain.DataPoint {
	points := make([]domain.DataPoint, 0, len(days))
	for _, d := range days {
		value := 0.0
		switch metric {
		case "ad_spend":
			value = d.Spend
		case "roas":
			if d.Spend > 0 {
				value = d.Revenue / d.Spend
			}
		case "conversion_rate":
			if d.Clicks > 0 {
				value = float64(d.Conversions) / float64(d.Clicks) * 100
			}
		}
		points = append(points, domain.DataPoint{Date: d.Date, Value: value})
	}
	return points
}
