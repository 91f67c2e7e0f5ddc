// Package memory is the in-memory store backend: the default for local
// runs and the test double for everything above the store layer.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mydash/internal/core"
	"mydash/internal/store"
)

type Store struct {
	mu        sync.Mutex
	expenses  []core.Expense
	workouts  []core.Workout
	drinkLogs []core.DrinkLog
	todos     []core.Todo
	users     []core.User
	snapshots map[string]store.Snapshot
}

func New() *Store {
	return &Store{snapshots: make(map[string]store.Snapshot)}
}

func newID() string { return uuid.NewString() }

func inMonth(date, monthKey string) bool {
	return monthKey == "" || core.InMonth(date, monthKey)
}

// Expenses

func (s *Store) ListExpenses(_ context.Context, monthKey string) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		if inMonth(e.Date, monthKey) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = newID()
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			e.ID = id
			s.expenses[i] = e
			return e, nil
		}
	}
	return core.Expense{}, store.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Workouts

func (s *Store) ListWorkouts(_ context.Context, monthKey string) ([]core.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Workout, 0, len(s.workouts))
	for _, w := range s.workouts {
		if inMonth(w.Date, monthKey) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *Store) CreateWorkout(_ context.Context, w core.Workout) (core.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.ID = newID()
	s.workouts = append(s.workouts, w)
	return w, nil
}

func (s *Store) UpdateWorkout(_ context.Context, id string, w core.Workout) (core.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workouts {
		if s.workouts[i].ID == id {
			w.ID = id
			s.workouts[i] = w
			return w, nil
		}
	}
	return core.Workout{}, store.ErrNotFound
}

func (s *Store) DeleteWorkout(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workouts {
		if s.workouts[i].ID == id {
			s.workouts = append(s.workouts[:i], s.workouts[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Drink logs: one per date, newest-first listing.

func (s *Store) ListDrinkLogs(_ context.Context, monthKey string) ([]core.DrinkLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.DrinkLog, 0, len(s.drinkLogs))
	for _, d := range s.drinkLogs {
		if inMonth(d.Date, monthKey) {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) UpsertDrinkLog(_ context.Context, d core.DrinkLog) (core.DrinkLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drinkLogs {
		if s.drinkLogs[i].Date == d.Date {
			d.ID = s.drinkLogs[i].ID
			s.drinkLogs[i] = d
			return d, nil
		}
	}
	d.ID = newID()
	s.drinkLogs = append(s.drinkLogs, d)
	return d, nil
}

func (s *Store) UpdateDrinkLog(_ context.Context, id string, d core.DrinkLog) (core.DrinkLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drinkLogs {
		if s.drinkLogs[i].ID == id {
			d.ID = id
			s.drinkLogs[i] = d
			return d, nil
		}
	}
	return core.DrinkLog{}, store.ErrNotFound
}

func (s *Store) DeleteDrinkLog(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drinkLogs {
		if s.drinkLogs[i].ID == id {
			s.drinkLogs = append(s.drinkLogs[:i], s.drinkLogs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Todos

func (s *Store) ListTodos(_ context.Context) ([]core.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Todo, len(s.todos))
	copy(out, s.todos)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateTodo(_ context.Context, td core.Todo) (core.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	td.ID = newID()
	if td.CreatedAt.IsZero() {
		td.CreatedAt = time.Now()
	}
	s.todos = append(s.todos, td)
	return td, nil
}

func (s *Store) UpdateTodo(_ context.Context, id string, td core.Todo) (core.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			td.ID = id
			td.CreatedAt = s.todos[i].CreatedAt
			s.todos[i] = td
			return td, nil
		}
	}
	return core.Todo{}, store.ErrNotFound
}

func (s *Store) DeleteTodo(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// Users

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email && u.IsActive {
			return u, nil
		}
	}
	return core.User{}, store.ErrNotFound
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = newID()
	u.Email = strings.ToLower(u.Email)
	s.users = append(s.users, u)
	return u, nil
}

// Snapshots

func snapshotKey(monthKey, tier string) string { return monthKey + "|" + tier }

func (s *Store) SaveSnapshot(_ context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshotKey(snap.MonthKey, snap.Tier)] = snap
	return nil
}

func (s *Store) GetSnapshot(_ context.Context, monthKey, tier string) (store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[snapshotKey(monthKey, tier)]
	if !ok {
		return store.Snapshot{}, store.ErrNotFound
	}
	return snap, nil
}

func (s *Store) Close(context.Context) error { return nil }
