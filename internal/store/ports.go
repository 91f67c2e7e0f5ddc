// Package store defines the persistence ports the service layer talks
// to. Three backends implement them: an in-memory store (tests and
// default), SQLite, and MongoDB. List operations accept an optional
// month key; backends may push the filter down or apply it client-side,
// both are equivalent since month bucketing is a prefix match and
// idempotent to apply twice.
package store

import (
	"context"
	"errors"
	"time"

	"mydash/internal/core"
)

var ErrNotFound = errors.New("record not found")

type (
	ExpenseStore interface {
		ListExpenses(ctx context.Context, monthKey string) ([]core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	WorkoutStore interface {
		ListWorkouts(ctx context.Context, monthKey string) ([]core.Workout, error)
		CreateWorkout(ctx context.Context, w core.Workout) (core.Workout, error)
		UpdateWorkout(ctx context.Context, id string, w core.Workout) (core.Workout, error)
		DeleteWorkout(ctx context.Context, id string) error
	}

	// DrinkLogStore keeps at most one log per calendar date.
	// UpsertDrinkLog replaces any existing log with the same date.
	DrinkLogStore interface {
		ListDrinkLogs(ctx context.Context, monthKey string) ([]core.DrinkLog, error)
		UpsertDrinkLog(ctx context.Context, d core.DrinkLog) (core.DrinkLog, error)
		UpdateDrinkLog(ctx context.Context, id string, d core.DrinkLog) (core.DrinkLog, error)
		DeleteDrinkLog(ctx context.Context, id string) error
	}

	TodoStore interface {
		ListTodos(ctx context.Context) ([]core.Todo, error)
		CreateTodo(ctx context.Context, td core.Todo) (core.Todo, error)
		UpdateTodo(ctx context.Context, id string, td core.Todo) (core.Todo, error)
		DeleteTodo(ctx context.Context, id string) error
	}

	UserStore interface {
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		CountUsers(ctx context.Context) (int64, error)
		CreateUser(ctx context.Context, u core.User) (core.User, error)
	}

	// Snapshot is a persisted rollup result for one (month, tier),
	// written by the worker so past months keep a queryable history.
	Snapshot struct {
		MonthKey string    `json:"monthKey"`
		Tier     string    `json:"tier"`
		TakenAt  time.Time `json:"takenAt"`
		Data     []byte    `json:"data"` // JSON-encoded rollup.Result
	}

	SnapshotStore interface {
		SaveSnapshot(ctx context.Context, s Snapshot) error
		GetSnapshot(ctx context.Context, monthKey, tier string) (Snapshot, error)
	}
)

// Store is the full persistence surface a backend provides.
type Store interface {
	ExpenseStore
	WorkoutStore
	DrinkLogStore
	TodoStore
	UserStore
	SnapshotStore
	Close(ctx context.Context) error
}
