package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"mydash/internal/budget"
	"mydash/internal/core"
	"mydash/internal/rollup"
	"mydash/internal/store"
)

// RollupService computes monthly rollups and budget projections. The
// three record fetches are independent, so they run concurrently.
type RollupService struct {
	store store.Store
	plan  budget.Plan
	now   func() time.Time
}

func NewRollupService(st store.Store, plan budget.Plan) (*RollupService, error) {
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid budget plan: %w", err)
	}
	return &RollupService{
		store: st,
		plan:  plan,
		now:   time.Now,
	}, nil
}

func (s *RollupService) fetchMonth(ctx context.Context, monthKey string) ([]core.Expense, []core.Workout, []core.DrinkLog, error) {
	var (
		expenses []core.Expense
		workouts []core.Workout
		drinks   []core.DrinkLog
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(ctx, monthKey)
		return err
	})
	g.Go(func() error {
		var err error
		workouts, err = s.store.ListWorkouts(ctx, monthKey)
		return err
	})
	g.Go(func() error {
		var err error
		drinks, err = s.store.ListDrinkLogs(ctx, monthKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, fmt.Errorf("fetch month records: %w", err)
	}

	return expenses, workouts, drinks, nil
}

// Rollup computes the full monthly rollup for the given month and tier.
func (s *RollupService) Rollup(ctx context.Context, monthKey string, tier budget.Tier) (rollup.Result, error) {
	expenses, workouts, drinks, err := s.fetchMonth(ctx, monthKey)
	if err != nil {
		return rollup.Result{}, err
	}
	return rollup.Compute(expenses, workouts, drinks, monthKey, tier, s.plan, s.now()), nil
}

// Projection computes the per-category budget projection rows for the
// given month and tier.
func (s *RollupService) Projection(ctx context.Context, monthKey string, tier budget.Tier) ([]rollup.ProjectionRow, error) {
	expenses, err := s.store.ListExpenses(ctx, monthKey)
	if err != nil {
		return nil, fmt.Errorf("fetch month expenses: %w", err)
	}
	actual, _ := rollup.SumByCategory(expenses, monthKey)
	return rollup.ProjectionRows(actual, tier, s.plan), nil
}
