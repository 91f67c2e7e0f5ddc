// Package budget holds the static spending plan and the status
// classification used by the projection view. The plan is configuration
// versioned with the code, not user data: a category missing a tier is
// a programming error and fails startup.
package budget

import (
	"errors"
	"fmt"

	"mydash/internal/core"
)

// Tier selects which budget column a projection runs against.
type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

var ErrUnknownTier = errors.New("unknown tier")

// ParseTier validates a tier value from a request. Empty input falls
// back to the low tier, the UI default; anything else unknown is an
// error.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierLow, TierMid, TierHigh:
		return Tier(s), nil
	case "":
		return TierLow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
}

// Tiers lists all tiers in ascending order of aggressiveness.
func Tiers() []Tier {
	return []Tier{TierLow, TierMid, TierHigh}
}

// Entry holds the budgeted THB amount per tier for one category.
type Entry struct {
	Low  core.Amount
	Mid  core.Amount
	High core.Amount
}

// Plan maps category to per-tier budgets. Order is the fixed category
// enumeration order the projection table renders in.
type Plan struct {
	Entries map[string]Entry
	Order   []string
}

func entry(low, mid, high int64) Entry {
	return Entry{
		Low:  core.AmountFromInt(low),
		Mid:  core.AmountFromInt(mid),
		High: core.AmountFromInt(high),
	}
}

// Default returns the budget plan, THB per month per category.
func Default() Plan {
	return Plan{
		Entries: map[string]Entry{
			"Eat":       entry(10000, 15000, 30000),
			"Drink":     entry(7000, 16000, 24000),
			"Golf":      entry(10000, 15000, 20000),
			"Transport": entry(3000, 6000, 10000),
			"Shopping":  entry(5000, 8000, 10000),
			"Billing":   entry(4000, 4000, 4000),
			"Others":    entry(3000, 5000, 7000),
			"Etc":       entry(5000, 12000, 20000),
		},
		Order: []string{"Eat", "Drink", "Golf", "Transport", "Shopping", "Billing", "Others", "Etc"},
	}
}

// Validate fails fast on a plan/category mismatch. Called once at
// startup; lookups after that never need to recover.
func (p Plan) Validate() error {
	if len(p.Order) == 0 {
		return errors.New("budget plan has no categories")
	}
	for _, cat := range p.Order {
		e, ok := p.Entries[cat]
		if !ok {
			return fmt.Errorf("budget plan missing category %q", cat)
		}
		for tier, amt := range map[Tier]core.Amount{TierLow: e.Low, TierMid: e.Mid, TierHigh: e.High} {
			if !amt.IsPositive() {
				return fmt.Errorf("budget plan category %q tier %q must be positive", cat, tier)
			}
		}
	}
	if len(p.Entries) != len(p.Order) {
		return fmt.Errorf("budget plan has %d entries but %d ordered categories", len(p.Entries), len(p.Order))
	}
	return nil
}

// For returns the budgeted amount for a category and tier. Unknown
// categories budget zero; Validate has already guaranteed the known
// set is complete.
func (p Plan) For(category string, tier Tier) core.Amount {
	e, ok := p.Entries[category]
	if !ok {
		return core.Amount{}
	}
	switch tier {
	case TierMid:
		return e.Mid
	case TierHigh:
		return e.High
	default:
		return e.Low
	}
}

// Total sums the plan across all categories for a tier.
func (p Plan) Total(tier Tier) core.Amount {
	var total core.Amount
	for _, cat := range p.Order {
		total = total.Add(p.For(cat, tier))
	}
	return total
}
