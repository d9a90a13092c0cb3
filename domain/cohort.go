package domain

import "time"

// Cohort groups customers that placed their first order in the same period.
type Cohort struct {
	CohortID       string         `json:"cohort_id"`
	CohortDate     time.Time      `json:"cohort_date"`
	Source         string         `json:"source,omitempty"`
	CustomersCount int            `json:"customers_count"`
	InitialRevenue float64        `json:"initial_revenue"`
	Periods        []CohortPeriod `json:"periods"`
}

type CohortPeriod struct {
	Period                int     `json:"period"`
	ActiveCustomers       int     `json:"active_customers"`
	Revenue               float64 `json:"revenue"`
	Orders                int     `json:"orders"`
	RetentionRate         float64 `json:"retention_rate"`
	CumulativeRevenue     float64 `json:"cumulative_revenue"`
	AvgRevenuePerCustomer float64 `json:"avg_revenue_per_customer"`
}

// RetentionCurvePoint is the cross-cohort average retention at one period offset.
type RetentionCurvePoint struct {
	Period       int     `json:"period"`
	AvgRetention float64 `json:"avg_retention"`
	Cohorts      int     `json:"cohorts"`
}
