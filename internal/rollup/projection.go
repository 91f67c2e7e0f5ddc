package rollup

import (
	"mydash/internal/budget"
	"mydash/internal/core"
)

// ProjectionRow compares one category's budget against the month's
// actual spend for the selected tier.
type ProjectionRow struct {
	Category string      `json:"category"`
	Budget   core.Amount `json:"budget"`
	Actual   core.Amount `json:"actual"`
	// Remaining is budget - actual: negative means over budget, the
	// opposite sign convention from Result.SpendVariance.
	Remaining core.Amount   `json:"remaining"`
	Status    budget.Status `json:"status"`
}

// ProjectionRows builds one row per category in the plan's fixed
// order. Categories with no spend project the full budget remaining.
func ProjectionRows(actualByCategory map[string]core.Amount, tier budget.Tier, plan budget.Plan) []ProjectionRow {
	rows := make([]ProjectionRow, 0, len(plan.Order))
	for _, cat := range plan.Order {
		b := plan.For(cat, tier)
		actual := actualByCategory[cat] // zero value when absent
		remaining := b.Sub(actual)
		rows = append(rows, ProjectionRow{
			Category:  cat,
			Budget:    b,
			Actual:    actual,
			Remaining: remaining,
			Status:    budget.Classify(remaining, b),
		})
	}
	return rows
}
