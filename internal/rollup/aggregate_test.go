package rollup

import (
	"testing"

	"mydash/internal/core"
)

func exp(date string, amount int64, category string) core.Expense {
	return core.Expense{Date: date, Amount: core.AmountFromInt(amount), Category: category}
}

func TestSumByCategory(t *testing.T) {
	expenses := []core.Expense{
		exp("2026-03-05", 500, "Eat"),
		exp("2026-03-06", 300, "Eat"),
		exp("2026-03-10", 700, "Golf"),
		exp("2026-04-01", 1000, "Eat"), // other month
		exp("bad-date", 999, "Eat"),    // excluded
	}
	totals, order := SumByCategory(expenses, "2026-03")

	if len(order) != 2 || order[0] != "Eat" || order[1] != "Golf" {
		t.Fatalf("order = %v, want [Eat Golf]", order)
	}
	if !totals["Eat"].Equal(core.AmountFromInt(800)) {
		t.Fatalf("Eat total = %s, want 800", totals["Eat"])
	}
	if !totals["Golf"].Equal(core.AmountFromInt(700)) {
		t.Fatalf("Golf total = %s, want 700", totals["Golf"])
	}
}

func TestSumByCategoryMissingCategoryBucket(t *testing.T) {
	totals, order := SumByCategory([]core.Expense{exp("2026-03-05", 50, "")}, "2026-03")
	if len(order) != 1 || order[0] != "Other" {
		t.Fatalf("order = %v, want [Other]", order)
	}
	if !totals["Other"].Equal(core.AmountFromInt(50)) {
		t.Fatalf("Other total = %s, want 50", totals["Other"])
	}
}

// Category totals must partition the month total exactly.
func TestSumByCategoryPartitionsTotal(t *testing.T) {
	expenses := []core.Expense{
		exp("2026-03-01", 120, "Eat"),
		exp("2026-03-02", 80, "Drink"),
		exp("2026-03-03", 45, "Eat"),
		exp("2026-03-28", 310, "Transport"),
		exp("2026-02-28", 55, "Eat"),
	}
	totals, _ := SumByCategory(expenses, "2026-03")
	var sum core.Amount
	for _, v := range totals {
		sum = sum.Add(v)
	}
	if !sum.Equal(TotalSpend(expenses, "2026-03")) {
		t.Fatalf("category totals %s != month total %s", sum, TotalSpend(expenses, "2026-03"))
	}
}

func TestTopCategory(t *testing.T) {
	expenses := []core.Expense{
		exp("2026-03-05", 500, "Eat"),
		exp("2026-03-06", 300, "Eat"),
		exp("2026-03-10", 700, "Golf"),
	}
	if got := TopCategory(expenses, "2026-03"); got != "Eat" {
		t.Fatalf("top = %q, want Eat", got)
	}
	if got := TopCategory(nil, "2026-03"); got != NoCategory {
		t.Fatalf("empty top = %q, want %q", got, NoCategory)
	}
}

// On exact total ties the first-encountered category wins.
func TestTopCategoryTieBreak(t *testing.T) {
	expenses := []core.Expense{
		exp("2026-03-02", 400, "Drink"),
		exp("2026-03-05", 400, "Eat"),
	}
	if got := TopCategory(expenses, "2026-03"); got != "Drink" {
		t.Fatalf("tie should go to first-encountered Drink, got %q", got)
	}
}

func TestWeeklyTotals(t *testing.T) {
	expenses := []core.Expense{
		exp("2026-03-01", 100, "Eat"), // Sunday
		exp("2026-03-02", 200, "Eat"), // Monday
		exp("2026-03-08", 50, "Eat"),  // Sunday again
		exp("bad", 999, "Eat"),
	}
	got := WeeklyTotals(expenses, "2026-03")
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	if got[0].Label != "Sun" || got[6].Label != "Sat" {
		t.Fatalf("bucket labels wrong: %v", got)
	}
	if !got[0].Total.Equal(core.AmountFromInt(150)) {
		t.Fatalf("Sunday = %s, want 150", got[0].Total)
	}
	if !got[1].Total.Equal(core.AmountFromInt(200)) {
		t.Fatalf("Monday = %s, want 200", got[1].Total)
	}

	// Buckets must sum to the month total (malformed dates excluded
	// from both sides of the comparison set).
	var sum core.Amount
	for _, b := range got {
		sum = sum.Add(b.Total)
	}
	if !sum.Equal(core.AmountFromInt(350)) {
		t.Fatalf("weekly sum = %s, want 350", sum)
	}
}

func TestWeeklyTotalsEmpty(t *testing.T) {
	got := WeeklyTotals(nil, "2026-03")
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	for _, b := range got {
		if !b.Total.IsZero() {
			t.Fatalf("bucket %s not zero", b.Label)
		}
	}
}

func TestActiveDays(t *testing.T) {
	workouts := []core.Workout{
		{Date: "2026-03-01", WorkoutType: "Run"},
		{Date: "2026-03-01", WorkoutType: "Gym"},
		{Date: "2026-03-02", WorkoutType: "Run"},
		{Date: "2026-04-01", WorkoutType: "Run"},
	}
	if got := ActiveDays(workouts, "2026-03"); got != 2 {
		t.Fatalf("active days = %d, want 2", got)
	}
}
