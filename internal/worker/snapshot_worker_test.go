package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"mydash/internal/amqp"
	"mydash/internal/budget"
	"mydash/internal/core"
	"mydash/internal/rollup"
	"mydash/internal/services"
	"mydash/internal/store/memory"
)

func newTestWorker(t *testing.T) (*SnapshotWorker, *memory.Store) {
	t.Helper()
	st := memory.New()
	rollups, err := services.NewRollupService(st, budget.Default())
	if err != nil {
		t.Fatalf("NewRollupService() error = %v", err)
	}
	return NewSnapshotWorker(st, rollups, nil, "5 0 1 * *"), st
}

func TestSnapshotWorker_HandleRecordChanged(t *testing.T) {
	w, st := newTestWorker(t)
	ctx := context.Background()

	if _, err := st.CreateExpense(ctx, core.Expense{
		Date: "2026-03-02", Amount: core.AmountFromInt(500), Category: "Eat",
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	msg := amqp.NewRecordChangedMessage("expense", "id-1", "2026-03", amqp.OpCreate)
	if err := w.HandleRecordChanged(ctx, msg); err != nil {
		t.Fatalf("HandleRecordChanged() error = %v", err)
	}

	// One snapshot per tier.
	for _, tier := range budget.Tiers() {
		snap, err := st.GetSnapshot(ctx, "2026-03", string(tier))
		if err != nil {
			t.Fatalf("GetSnapshot(2026-03, %s) error = %v", tier, err)
		}

		var result rollup.Result
		if err := json.Unmarshal(snap.Data, &result); err != nil {
			t.Fatalf("unmarshal snapshot: %v", err)
		}
		if !result.TotalSpend.Equal(core.AmountFromInt(500)) {
			t.Errorf("tier %s TotalSpend = %v, want 500", tier, result.TotalSpend)
		}
		if result.Tier != tier {
			t.Errorf("snapshot tier = %v, want %v", result.Tier, tier)
		}
	}
}

func TestSnapshotWorker_HandleRecordChanged_NoMonthFallsBackToCurrent(t *testing.T) {
	w, st := newTestWorker(t)
	w.now = func() time.Time {
		return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	msg := amqp.NewRecordChangedMessage("expense", "id-1", "", amqp.OpDelete)
	if err := w.HandleRecordChanged(ctx, msg); err != nil {
		t.Fatalf("HandleRecordChanged() error = %v", err)
	}

	if _, err := st.GetSnapshot(ctx, "2026-03", string(budget.TierLow)); err != nil {
		t.Errorf("GetSnapshot(2026-03, low) error = %v, want snapshot for current month", err)
	}
}

type recordingNotifier struct {
	reports []rollup.Result
}

func (n *recordingNotifier) SendMonthlyReport(result rollup.Result) error {
	n.reports = append(n.reports, result)
	return nil
}

func TestSnapshotWorker_MonthlyClose(t *testing.T) {
	st := memory.New()
	rollups, err := services.NewRollupService(st, budget.Default())
	if err != nil {
		t.Fatalf("NewRollupService() error = %v", err)
	}
	notifier := &recordingNotifier{}
	w := NewSnapshotWorker(st, rollups, notifier, "5 0 1 * *")
	ctx := context.Background()

	if _, err := st.CreateExpense(ctx, core.Expense{
		Date: "2026-02-10", Amount: core.AmountFromInt(1200), Category: "Drink",
	}); err != nil {
		t.Fatalf("CreateExpense() error = %v", err)
	}

	if err := w.runMonthlyClose(ctx, "2026-02"); err != nil {
		t.Fatalf("runMonthlyClose() error = %v", err)
	}

	if len(notifier.reports) != 1 {
		t.Fatalf("sent %d reports, want 1", len(notifier.reports))
	}
	if notifier.reports[0].MonthKey != "2026-02" {
		t.Errorf("report month = %v, want 2026-02", notifier.reports[0].MonthKey)
	}
	if _, err := st.GetSnapshot(ctx, "2026-02", string(budget.TierHigh)); err != nil {
		t.Errorf("GetSnapshot(2026-02, high) error = %v", err)
	}
}

func TestPreviousMonthKey(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{time.Date(2026, time.March, 1, 0, 5, 0, 0, time.UTC), "2026-02"},
		{time.Date(2026, time.January, 1, 0, 5, 0, 0, time.UTC), "2025-12"},
	}
	for _, tt := range tests {
		if got := core.PreviousMonthKey(tt.now); got != tt.want {
			t.Errorf("PreviousMonthKey(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}
