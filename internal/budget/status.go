package budget

import "mydash/internal/core"

// Status labels a category's budget position for the month.
type Status string

const (
	StatusOnTrack    Status = "On Track"
	StatusWarning    Status = "Warning"
	StatusOverBudget Status = "Over Budget"
)

// Classify thresholds the remaining/budget ratio into a status.
//
// A zero or negative ceiling means "no constraint", so it is always
// On Track rather than always over. Otherwise negative remaining is
// Over Budget and a ratio at or below 20% is a Warning. Stateless:
// every call is evaluated from scratch.
func Classify(remaining, budget core.Amount) Status {
	if !budget.IsPositive() {
		return StatusOnTrack
	}
	if remaining.IsNegative() {
		return StatusOverBudget
	}
	// remaining/budget <= 0.20, compared without dividing.
	if remaining.MulInt(5).Cmp(budget) <= 0 {
		return StatusWarning
	}
	return StatusOnTrack
}
