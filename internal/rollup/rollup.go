package rollup

import (
	"time"

	"mydash/internal/budget"
	"mydash/internal/core"
)

// Result is everything the dashboard needs for one (month, tier) pair,
// computed fresh from the raw record sets on each call.
type Result struct {
	MonthKey string      `json:"monthKey"`
	Tier     budget.Tier `json:"tier"`

	TotalSpend       core.Amount            `json:"totalSpend"`
	ActualByCategory map[string]core.Amount `json:"actualByCategory"`
	TopCategory      string                 `json:"topCategory"`
	WeeklySpend      []WeekdayTotal         `json:"weeklySpend"`

	PlannedTotal core.Amount `json:"plannedTotal"`
	// SpendVariance is plannedTotal - totalSpend: positive means under
	// budget. Note the opposite sign convention from ProjectionRow's
	// Remaining; the KPI and the table are labelled independently and
	// must stay that way.
	SpendVariance core.Amount `json:"spendVariance"`

	WorkoutCount      int `json:"workoutCount"`
	ActiveWorkoutDays int `json:"activeWorkoutDays"`
	DaysInMonth       int `json:"daysInMonth"`

	Drinks DrinkStats `json:"drinks"`
}

// Compute produces the full monthly rollup. Pure: same snapshots, month
// key, tier and clock always yield the same result, so callers are free
// to recompute on every render or memoize, whichever suits them.
func Compute(expenses []core.Expense, workouts []core.Workout, drinks []core.DrinkLog,
	monthKey string, tier budget.Tier, plan budget.Plan, now time.Time) Result {

	actual, _ := SumByCategory(expenses, monthKey)
	total := TotalSpend(expenses, monthKey)
	planned := plan.Total(tier)

	workoutCount := 0
	for _, w := range workouts {
		if core.InMonth(w.Date, monthKey) {
			workoutCount++
		}
	}

	asOf := core.AsOfDay(monthKey, now)

	return Result{
		MonthKey:          monthKey,
		Tier:              tier,
		TotalSpend:        total,
		ActualByCategory:  actual,
		TopCategory:       TopCategory(expenses, monthKey),
		WeeklySpend:       WeeklyTotals(expenses, monthKey),
		PlannedTotal:      planned,
		SpendVariance:     planned.Sub(total),
		WorkoutCount:      workoutCount,
		ActiveWorkoutDays: ActiveDays(workouts, monthKey),
		DaysInMonth:       core.DaysInMonth(monthKey),
		Drinks:            ComputeDrinkStats(drinks, monthKey, asOf),
	}
}
