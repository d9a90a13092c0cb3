package cohort

import (
	"fmt"
	"time"
)

// cohortKey renders the period bucket containing t, e.g. "2024-03",
// "2024-W05" or "2024-Q1". ISO week numbering (Thursday-anchored) is used
// for weekly cohorts.
func cohortKey(t time.Time, groupBy string) string {
	switch groupBy {
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GroupByQuarter:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	default:
		return t.Format("2006-01")
	}
}

// periodStart truncates t to the start of its groupBy period in UTC.
func periodStart(t time.Time, groupBy string) time.Time {
	t = t.UTC()
	switch groupBy {
	case GroupByWeek:
		// Monday of the ISO week
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	case GroupByQuarter:
		firstMonth := time.Month(((int(t.Month())-1)/3)*3 + 1)
		return time.Date(t.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// periodIndex counts groupBy boundaries between the cohort start and the
// order date using integer calendar arithmetic, never elapsed-day division.
func periodIndex(cohortStart, orderDate time.Time, groupBy string) int {
	a := periodStart(cohortStart, groupBy)
	b := periodStart(orderDate, groupBy)

	switch groupBy {
	case GroupByWeek:
		return int(b.Sub(a).Hours() / (24 * 7))
	case GroupByQuarter:
		qa := (int(a.Month()) - 1) / 3
		qb := (int(b.Month()) - 1) / 3
		return (b.Year()-a.Year())*4 + (qb - qa)
	default:
		return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	}
}
