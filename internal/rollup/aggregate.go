// Package rollup computes the monthly aggregates behind the dashboard:
// category totals, budget projection rows, workout and drinking stats.
// Everything here is a pure function of its inputs. Callers pass
// immutable snapshots of the record sets and recompute on every render;
// nothing is cached and nothing is mutated.
package rollup

import (
	"sort"

	"mydash/internal/core"
)

// NoCategory is the sentinel returned when no records qualify.
const NoCategory = "-"

// fallbackCategory buckets records whose category is missing.
const fallbackCategory = "Other"

// SumByCategory sums in-month expense amounts grouped by category.
// The returned order slice lists categories in first-encounter order,
// which downstream tie-breaking relies on. Records outside the month
// or with unparseable dates are skipped, not errors.
func SumByCategory(expenses []core.Expense, monthKey string) (map[string]core.Amount, []string) {
	totals := make(map[string]core.Amount)
	var order []string
	for _, e := range expenses {
		if !core.InMonth(e.Date, monthKey) {
			continue
		}
		cat := e.Category
		if cat == "" {
			cat = fallbackCategory
		}
		if _, seen := totals[cat]; !seen {
			order = append(order, cat)
		}
		totals[cat] = totals[cat].Add(e.Amount)
	}
	return totals, order
}

// TotalSpend sums all in-month expense amounts.
func TotalSpend(expenses []core.Expense, monthKey string) core.Amount {
	var total core.Amount
	for _, e := range expenses {
		if core.InMonth(e.Date, monthKey) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// TopCategory returns the category with the highest in-month total,
// or NoCategory when the month has no expenses. Ties break to the
// first-encountered category: the sort is stable and descending on
// total, so insertion order wins on exact ties.
func TopCategory(expenses []core.Expense, monthKey string) string {
	totals, order := SumByCategory(expenses, monthKey)
	if len(order) == 0 {
		return NoCategory
	}
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return totals[ranked[i]].Cmp(totals[ranked[j]]) > 0
	})
	return ranked[0]
}

// WeekdayTotal is one bar of the weekly spend breakdown.
type WeekdayTotal struct {
	Label string      `json:"label"`
	Total core.Amount `json:"total"`
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeeklyTotals buckets in-month expenses by day of week. Always exactly
// seven entries, Sunday through Saturday, zero-filled. Records whose
// dates do not parse to a calendar day are excluded.
func WeeklyTotals(expenses []core.Expense, monthKey string) []WeekdayTotal {
	var buckets [7]core.Amount
	for _, e := range expenses {
		if !core.InMonth(e.Date, monthKey) {
			continue
		}
		wd, ok := core.WeekdayOf(e.Date)
		if !ok {
			continue
		}
		buckets[wd] = buckets[wd].Add(e.Amount)
	}
	out := make([]WeekdayTotal, 7)
	for i := range buckets {
		out[i] = WeekdayTotal{Label: weekdayLabels[i], Total: buckets[i]}
	}
	return out
}

// ActiveDays counts distinct workout dates in the month. Two sessions
// on the same day count once.
func ActiveDays(workouts []core.Workout, monthKey string) int {
	days := make(map[string]struct{})
	for _, w := range workouts {
		if core.InMonth(w.Date, monthKey) {
			days[w.Date] = struct{}{}
		}
	}
	return len(days)
}
