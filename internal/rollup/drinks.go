package rollup

import (
	"sort"
	"strings"

	"mydash/internal/core"
)

// Drink trend labels.
const (
	TrendHeavier = "Heavier this month"
	TrendLighter = "Getting lighter"
	TrendStable  = "Stable"
)

// trendThreshold is the minimum mean-level shift between month halves
// before the trend label moves off Stable.
const trendThreshold = 0.3

// drinkDay is one qualifying drank log within the as-of range.
type drinkDay struct {
	day   int
	level int
}

// DrinkStats summarises the month's drinking logs up to the as-of day.
type DrinkStats struct {
	DrinkingDays     int    `json:"drinkingDays"`
	TotalDaysElapsed int    `json:"totalDaysElapsed"`
	TopReasons       string `json:"topReasons"`
	Trend            string `json:"trend"`
}

// ComputeDrinkStats evaluates drink logs for the month, considering
// only logs dated on or before asOfDay. The stores keep at most one
// log per date, but nothing here assumes that; duplicate dates would
// simply each count.
func ComputeDrinkStats(logs []core.DrinkLog, monthKey string, asOfDay int) DrinkStats {
	stats := DrinkStats{
		TotalDaysElapsed: asOfDay,
		TopReasons:       NoCategory,
		Trend:            TrendStable,
	}

	var drank []drinkDay
	reasonCounts := make(map[string]int)
	var reasonOrder []string

	for _, l := range logs {
		if !core.InMonth(l.Date, monthKey) {
			continue
		}
		day, ok := core.DayOf(l.Date)
		if !ok || day > asOfDay {
			continue
		}
		if !l.Drank {
			continue
		}
		drank = append(drank, drinkDay{day: day, level: l.Level})
		for _, r := range l.Reasons {
			if r == "" {
				continue
			}
			if _, seen := reasonCounts[r]; !seen {
				reasonOrder = append(reasonOrder, r)
			}
			reasonCounts[r]++
		}
	}

	stats.DrinkingDays = len(drank)
	stats.TopReasons = topReasons(reasonCounts, reasonOrder)
	stats.Trend = levelTrend(drank, asOfDay)
	return stats
}

// topReasons returns the two most frequent reason tags joined with a
// comma, ties broken by first encounter.
func topReasons(counts map[string]int, order []string) string {
	if len(order) == 0 {
		return NoCategory
	}
	ranked := make([]string, len(order))
	copy(ranked, order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return counts[ranked[i]] > counts[ranked[j]]
	})
	if len(ranked) > 2 {
		ranked = ranked[:2]
	}
	return strings.Join(ranked, ", ")
}

// levelTrend splits the elapsed range at its midpoint and compares the
// mean drinking level of each half. Either half empty means Stable.
func levelTrend(drank []drinkDay, asOfDay int) string {
	if asOfDay <= 0 {
		return TrendStable
	}
	mid := (asOfDay + 1) / 2 // ceil(asOfDay/2)

	var firstSum, firstN, secondSum, secondN int
	for _, q := range drank {
		if q.day <= mid {
			firstSum += q.level
			firstN++
		} else {
			secondSum += q.level
			secondN++
		}
	}
	if firstN == 0 || secondN == 0 {
		return TrendStable
	}
	diff := float64(secondSum)/float64(secondN) - float64(firstSum)/float64(firstN)
	switch {
	case diff > trendThreshold:
		return TrendHeavier
	case diff < -trendThreshold:
		return TrendLighter
	default:
		return TrendStable
	}
}
