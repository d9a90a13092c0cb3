package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"marketPulse/domain"

	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{
		DB: db,
	}
}

// attributionSource pulls the acquisition source out of the order's
// attribution payload. Orders synced without attribution come back empty.
func attributionSource(order domain.Order) string {
	if order.Attribution == nil {
		return ""
	}
	if source, ok := order.Attribution["source"].(string); ok {
		return source
	}
	return ""
}

// FindOrderRecords shapes raw orders into analysis records, stamping each
// with the customer's first order date and acquisition source.
func (r *OrderRepository) FindOrderRecords(ctx context.Context) ([]domain.OrderRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var orders []domain.Order
	err := r.DB.WithContext(ctx).Order("order_date asc").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}

	// orders are date-ascending, so the first row per customer wins
	firstDates := make(map[string]time.Time, len(orders))
	firstSources := make(map[string]string, len(orders))
	for _, o := range orders {
		if _, seen := firstDates[o.CustomerID]; !seen {
			firstDates[o.CustomerID] = o.OrderDate
			firstSources[o.CustomerID] = attributionSource(o)
		}
	}

	records := make([]domain.OrderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, domain.OrderRecord{
			CustomerID:     o.CustomerID,
			FirstOrderDate: firstDates[o.CustomerID],
			OrderDate:      o.OrderDate,
			Revenue:        o.Revenue,
			Source:         firstSources[o.CustomerID],
		})
	}

	return records, nil
}

// AggregateCustomers rolls orders up to one row per customer.
func (r *OrderRepository) AggregateCustomers(ctx context.Context) ([]domain.CustomerAggregate, error) {
	records, err := r.FindOrderRecords(ctx)
	if err != nil {
		return nil, err
	}

	byCustomer := make(map[string]*domain.CustomerAggregate)
	for _, rec := range records {
		agg, ok := byCustomer[rec.CustomerID]
		if !ok {
			agg = &domain.CustomerAggregate{
				CustomerID:     rec.CustomerID,
				FirstOrderDate: rec.FirstOrderDate,
				LastOrderDate:  rec.OrderDate,
				Source:         rec.Source,
			}
			byCustomer[rec.CustomerID] = agg
		}
		if rec.OrderDate.After(agg.LastOrderDate) {
			agg.LastOrderDate = rec.OrderDate
		}
		agg.OrderCount++
		agg.TotalRevenue += rec.Revenue
	}

	customers := make([]domain.CustomerAggregate, 0, len(byCustomer))
	for _, agg := range byCustomer {
		if agg.OrderCount > 0 {
			agg.AvgOrderValue = agg.TotalRevenue / float64(agg.OrderCount)
		}
		customers = append(customers, *agg)
	}

	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].CustomerID < customers[j].CustomerID
	})
	return customers, nil
}

type seriesRow struct {
	Date  time.Time
	Value float64
}

// RevenueSeries returns daily revenue totals ordered by date.
func (r *OrderRepository) RevenueSeries(ctx context.Context) ([]domain.TimeSeriesPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []seriesRow
	err := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Select("date_trunc('day', order_date) as date, sum(revenue) as value").
		Group("date_trunc('day', order_date)").
		Order("date asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue series: %w", err)
	}

	series := make([]domain.TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, domain.TimeSeriesPoint{Date: row.Date, Value: row.Value})
	}
	return series, nil
}

// OrderCountSeries returns daily order counts ordered by date.
func (r *OrderRepository) OrderCountSeries(ctx context.Context) ([]domain.TimeSeriesPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []seriesRow
	err := r.DB.WithContext(ctx).
		Model(&domain.Order{}).
		Select("date_trunc('day', order_date) as date, count(*) as value").
		Group("date_trunc('day', order_date)").
		Order("date asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order count series: %w", err)
	}

	series := make([]domain.TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		series = append(series, domain.TimeSeriesPoint{Date: row.Date, Value: row.Value})
	}
	return series, nil
}
