package cohort

import (
	"testing"
	"time"

	"marketPulse/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func order(customer string, first, placed time.Time, revenue float64, source string) domain.OrderRecord {
	return domain.OrderRecord{
		CustomerID:     customer,
		FirstOrderDate: first,
		OrderDate:      placed,
		Revenue:        revenue,
		Source:         source,
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	cohorts := Analyze(nil, Options{})
	if len(cohorts) != 0 {
		t.Fatalf("expected empty result, got %d cohorts", len(cohorts))
	}
}

func TestAnalyzeRetentionScenario(t *testing.T) {
	jan := date(2024, time.January, 10)
	orders := []domain.OrderRecord{
		order("a", jan, jan, 100, ""),
		order("b", jan, date(2024, time.January, 20), 50, ""),
		// customer a comes back in February, b does not
		order("a", jan, date(2024, time.February, 5), 70, ""),
	}

	cohorts := Analyze(orders, Options{GroupBy: GroupByMonth, MaxPeriods: 3})
	if len(cohorts) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(cohorts))
	}

	c := cohorts[0]
	if c.CohortID != "2024-01" {
		t.Fatalf("cohort id: got %q, want 2024-01", c.CohortID)
	}
	if c.CustomersCount != 2 {
		t.Fatalf("customers: got %d, want 2", c.CustomersCount)
	}
	if len(c.Periods) != 4 {
		t.Fatalf("periods: got %d, want 4 (0..3 inclusive)", len(c.Periods))
	}
	if c.Periods[0].ActiveCustomers != 2 {
		t.Fatalf("period 0 active: got %d, want 2", c.Periods[0].ActiveCustomers)
	}
	if c.Periods[1].ActiveCustomers != 1 {
		t.Fatalf("period 1 active: got %d, want 1", c.Periods[1].ActiveCustomers)
	}
	if c.Periods[1].RetentionRate != 50.0 {
		t.Fatalf("period 1 retention: got %v, want 50.0", c.Periods[1].RetentionRate)
	}
	if c.InitialRevenue != 150 {
		t.Fatalf("initial revenue: got %v, want 150", c.InitialRevenue)
	}
	// trailing padded periods stay empty
	if c.Periods[3].ActiveCustomers != 0 || c.Periods[3].RetentionRate != 0 {
		t.Fatalf("period 3 should be empty, got %+v", c.Periods[3])
	}
}

func TestAnalyzeInvariants(t *testing.T) {
	jan := date(2024, time.January, 2)
	feb := date(2024, time.February, 2)
	orders := []domain.OrderRecord{
		order("a", jan, jan, 10, ""),
		order("b", jan, jan, 20, ""),
		order("c", feb, feb, 30, ""),
		order("a", jan, date(2024, time.March, 1), 5, ""),
	}

	cohorts := Analyze(orders, Options{MaxPeriods: 6})
	for _, c := range cohorts {
		prevCumulative := 0.0
		for _, p := range c.Periods {
			if p.ActiveCustomers > c.CustomersCount {
				t.Fatalf("cohort %s period %d: active %d > size %d",
					c.CohortID, p.Period, p.ActiveCustomers, c.CustomersCount)
			}
			if p.CumulativeRevenue < prevCumulative {
				t.Fatalf("cohort %s period %d: cumulative revenue decreased", c.CohortID, p.Period)
			}
			prevCumulative = p.CumulativeRevenue
		}
	}

	// cohorts sorted ascending by date
	for i := 1; i < len(cohorts); i++ {
		if cohorts[i].CohortDate.Before(cohorts[i-1].CohortDate) {
			t.Fatal("cohorts not sorted by cohort date")
		}
	}
}

func TestAnalyzeSourceFilterExcludes(t *testing.T) {
	jan := date(2024, time.January, 2)
	orders := []domain.OrderRecord{
		order("a", jan, jan, 10, "google"),
		order("b", jan, jan, 20, "meta"),
	}

	cohorts := Analyze(orders, Options{Source: "google", MaxPeriods: 1})
	if len(cohorts) != 1 {
		t.Fatalf("expected 1 cohort, got %d", len(cohorts))
	}
	if cohorts[0].CustomersCount != 1 {
		t.Fatalf("source filter must exclude customers entirely, got size %d", cohorts[0].CustomersCount)
	}
}

func TestPeriodIndexMonthArithmetic(t *testing.T) {
	start := date(2024, time.January, 31)
	// Feb 1 is the next month boundary even though only one day elapsed
	if p := periodIndex(start, date(2024, time.February, 1), GroupByMonth); p != 1 {
		t.Fatalf("month index: got %d, want 1", p)
	}
	if p := periodIndex(start, date(2025, time.January, 15), GroupByMonth); p != 12 {
		t.Fatalf("month index across years: got %d, want 12", p)
	}
}

func TestPeriodIndexWeekAndQuarter(t *testing.T) {
	// 2024-01-07 is a Sunday, 2024-01-08 the Monday of the next ISO week
	if p := periodIndex(date(2024, time.January, 7), date(2024, time.January, 8), GroupByWeek); p != 1 {
		t.Fatalf("week index: got %d, want 1", p)
	}
	if p := periodIndex(date(2024, time.March, 31), date(2024, time.April, 1), GroupByQuarter); p != 1 {
		t.Fatalf("quarter index: got %d, want 1", p)
	}
	if p := periodIndex(date(2023, time.November, 1), date(2024, time.February, 1), GroupByQuarter); p != 1 {
		t.Fatalf("quarter index across years: got %d, want 1", p)
	}
}

func TestCohortKeyISOWeek(t *testing.T) {
	// Jan 1 2027 is a Friday and belongs to ISO week 53 of 2026
	if k := cohortKey(date(2027, time.January, 1), GroupByWeek); k != "2026-W53" {
		t.Fatalf("iso week key: got %q, want 2026-W53", k)
	}
}

func TestAverageRetentionCurve(t *testing.T) {
	jan := date(2024, time.January, 2)
	feb := date(2024, time.February, 2)
	orders := []domain.OrderRecord{
		order("a", jan, jan, 10, ""),
		order("a", jan, feb, 10, ""),
		order("b", feb, feb, 10, ""),
	}

	cohorts := Analyze(orders, Options{MaxPeriods: 2})
	curve := AverageRetentionCurve(cohorts)
	if len(curve) != 3 {
		t.Fatalf("curve length: got %d, want 3", len(curve))
	}
	if curve[0].AvgRetention != 100 {
		t.Fatalf("period 0 avg retention: got %v, want 100", curve[0].AvgRetention)
	}
	// january retained 100% at period 1, february 0%
	if curve[1].AvgRetention != 50 {
		t.Fatalf("period 1 avg retention: got %v, want 50", curve[1].AvgRetention)
	}
}
