// Package worker keeps rollup snapshots fresh. It reacts to record
// change events from AMQP and runs a monthly cron that snapshots the
// just-closed month and delivers the report.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"mydash/internal/amqp"
	"mydash/internal/budget"
	"mydash/internal/core"
	"mydash/internal/rollup"
	"mydash/internal/services"
	"mydash/internal/store"
)

// Notifier delivers a finished monthly report.
type Notifier interface {
	SendMonthlyReport(result rollup.Result) error
}

// SnapshotWorker recomputes and persists rollup snapshots.
type SnapshotWorker struct {
	store    store.SnapshotStore
	rollups  *services.RollupService
	notifier Notifier
	cron     *cron.Cron
	cronSpec string
	now      func() time.Time
}

func NewSnapshotWorker(st store.SnapshotStore, rollups *services.RollupService, notifier Notifier, cronSpec string) *SnapshotWorker {
	return &SnapshotWorker{
		store:    st,
		rollups:  rollups,
		notifier: notifier,
		cronSpec: cronSpec,
		now:      time.Now,
	}
}

// HandleRecordChanged recomputes snapshots for the month the change
// touched, across all tiers. Events without a month (deletes, todos)
// refresh the current month.
func (w *SnapshotWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	monthKey := msg.MonthKey
	if monthKey == "" {
		monthKey = core.CurrentMonthKey(w.now())
	}

	slog.InfoContext(ctx, "Refreshing rollup snapshots",
		"month", monthKey, "kind", msg.Kind, "op", msg.Op)

	return w.SnapshotMonth(ctx, monthKey)
}

// SnapshotMonth computes and persists the rollup for every tier of one
// month.
func (w *SnapshotWorker) SnapshotMonth(ctx context.Context, monthKey string) error {
	for _, tier := range budget.Tiers() {
		result, err := w.rollups.Rollup(ctx, monthKey, tier)
		if err != nil {
			return fmt.Errorf("rollup %s/%s: %w", monthKey, tier, err)
		}

		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal rollup %s/%s: %w", monthKey, tier, err)
		}

		snap := store.Snapshot{
			MonthKey: monthKey,
			Tier:     string(tier),
			TakenAt:  w.now(),
			Data:     data,
		}
		if err := w.store.SaveSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("save snapshot %s/%s: %w", monthKey, tier, err)
		}
	}
	return nil
}

// StartCron schedules the monthly close-out job. The default spec fires
// shortly after midnight on the first of each month, snapshotting the
// month that just ended.
func (w *SnapshotWorker) StartCron(ctx context.Context) error {
	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.cronSpec, func() {
		monthKey := core.PreviousMonthKey(w.now())
		if err := w.runMonthlyClose(ctx, monthKey); err != nil {
			slog.ErrorContext(ctx, "Monthly close-out failed",
				"month", monthKey, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule monthly snapshot: %w", err)
	}
	w.cron.Start()
	return nil
}

func (w *SnapshotWorker) runMonthlyClose(ctx context.Context, monthKey string) error {
	if err := w.SnapshotMonth(ctx, monthKey); err != nil {
		return err
	}

	if w.notifier == nil {
		return nil
	}
	result, err := w.rollups.Rollup(ctx, monthKey, budget.TierLow)
	if err != nil {
		return fmt.Errorf("rollup for report: %w", err)
	}
	if err := w.notifier.SendMonthlyReport(result); err != nil {
		return fmt.Errorf("send monthly report: %w", err)
	}

	slog.InfoContext(ctx, "Monthly report delivered", "month", monthKey)
	return nil
}

// Stop halts the cron scheduler and waits for running jobs.
func (w *SnapshotWorker) Stop() {
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}
