package services

import (
	"context"
	"fmt"
	"log/slog"

	"mydash/internal/amqp"
	"mydash/internal/core"
	"mydash/internal/store"
)

// Publisher is the slice of the AMQP client the record service needs.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// Record kinds used in change events.
const (
	KindExpense = "expense"
	KindWorkout = "workout"
	KindDrink   = "drink"
	KindTodo    = "todo"
)

// RecordService orchestrates record writes: validate, persist, then
// announce the change. Publishing is best effort; a broker outage never
// fails the user's write.
type RecordService struct {
	store     store.Store
	publisher Publisher
}

func NewRecordService(st store.Store, publisher Publisher) *RecordService {
	return &RecordService{
		store:     st,
		publisher: publisher,
	}
}

func (s *RecordService) publish(ctx context.Context, kind, id, monthKey, op string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordChangedMessage(kind, id, monthKey, op)
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record changed message",
			"kind", kind, "record_id", id, "op", op, "error", err)
	}
}

// Expenses

func (s *RecordService) ListExpenses(ctx context.Context, monthKey string) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, monthKey)
}

func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.publish(ctx, KindExpense, created.ID, core.MonthKeyOf(created.Date), amqp.OpCreate)
	return created, nil
}

func (s *RecordService) UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated, err := s.store.UpdateExpense(ctx, id, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, KindExpense, id, core.MonthKeyOf(updated.Date), amqp.OpUpdate)
	return updated, nil
}

func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, KindExpense, id, "", amqp.OpDelete)
	return nil
}

// Workouts

func (s *RecordService) ListWorkouts(ctx context.Context, monthKey string) ([]core.Workout, error) {
	return s.store.ListWorkouts(ctx, monthKey)
}

func (s *RecordService) CreateWorkout(ctx context.Context, w core.Workout) (core.Workout, error) {
	if err := w.Validate(); err != nil {
		return core.Workout{}, err
	}
	created, err := s.store.CreateWorkout(ctx, w)
	if err != nil {
		return core.Workout{}, fmt.Errorf("create workout: %w", err)
	}
	s.publish(ctx, KindWorkout, created.ID, core.MonthKeyOf(created.Date), amqp.OpCreate)
	return created, nil
}

func (s *RecordService) UpdateWorkout(ctx context.Context, id string, w core.Workout) (core.Workout, error) {
	if err := w.Validate(); err != nil {
		return core.Workout{}, err
	}
	updated, err := s.store.UpdateWorkout(ctx, id, w)
	if err != nil {
		return core.Workout{}, err
	}
	s.publish(ctx, KindWorkout, id, core.MonthKeyOf(updated.Date), amqp.OpUpdate)
	return updated, nil
}

func (s *RecordService) DeleteWorkout(ctx context.Context, id string) error {
	if err := s.store.DeleteWorkout(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, KindWorkout, id, "", amqp.OpDelete)
	return nil
}

// Drink logs

func (s *RecordService) ListDrinkLogs(ctx context.Context, monthKey string) ([]core.DrinkLog, error) {
	return s.store.ListDrinkLogs(ctx, monthKey)
}

// UpsertDrinkLog writes the one log allowed for the record's date,
// replacing any previous log on that date.
func (s *RecordService) UpsertDrinkLog(ctx context.Context, d core.DrinkLog) (core.DrinkLog, error) {
	if err := d.Validate(); err != nil {
		return core.DrinkLog{}, err
	}
	saved, err := s.store.UpsertDrinkLog(ctx, d)
	if err != nil {
		return core.DrinkLog{}, fmt.Errorf("upsert drink log: %w", err)
	}
	s.publish(ctx, KindDrink, saved.ID, core.MonthKeyOf(saved.Date), amqp.OpUpsert)
	return saved, nil
}

func (s *RecordService) UpdateDrinkLog(ctx context.Context, id string, d core.DrinkLog) (core.DrinkLog, error) {
	if err := d.Validate(); err != nil {
		return core.DrinkLog{}, err
	}
	updated, err := s.store.UpdateDrinkLog(ctx, id, d)
	if err != nil {
		return core.DrinkLog{}, err
	}
	s.publish(ctx, KindDrink, id, core.MonthKeyOf(updated.Date), amqp.OpUpdate)
	return updated, nil
}

func (s *RecordService) DeleteDrinkLog(ctx context.Context, id string) error {
	if err := s.store.DeleteDrinkLog(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, KindDrink, id, "", amqp.OpDelete)
	return nil
}

// Todos

func (s *RecordService) ListTodos(ctx context.Context) ([]core.Todo, error) {
	return s.store.ListTodos(ctx)
}

func (s *RecordService) CreateTodo(ctx context.Context, td core.Todo) (core.Todo, error) {
	if err := td.Validate(); err != nil {
		return core.Todo{}, err
	}
	created, err := s.store.CreateTodo(ctx, td)
	if err != nil {
		return core.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	s.publish(ctx, KindTodo, created.ID, "", amqp.OpCreate)
	return created, nil
}

func (s *RecordService) UpdateTodo(ctx context.Context, id string, td core.Todo) (core.Todo, error) {
	if err := td.Validate(); err != nil {
		return core.Todo{}, err
	}
	updated, err := s.store.UpdateTodo(ctx, id, td)
	if err != nil {
		return core.Todo{}, err
	}
	s.publish(ctx, KindTodo, id, "", amqp.OpUpdate)
	return updated, nil
}

func (s *RecordService) DeleteTodo(ctx context.Context, id string) error {
	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, KindTodo, id, "", amqp.OpDelete)
	return nil
}
