// Package sqlite is the SQLite store backend, using a pure-Go driver so
// the binary stays cgo-free. Schema lives in embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mydash/internal/core"
	"mydash/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer connection: SQLite serializes writes anyway, and a
	// pool of one avoids SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close(context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// amountFromText parses a stored amount, coercing garbage to zero the
// same way the JSON boundary does.
func amountFromText(t string) core.Amount {
	a, err := core.ParseAmount(t)
	if err != nil {
		return core.Amount{}
	}
	return a
}

func monthClause(monthKey string) (string, []any) {
	if monthKey == "" {
		return "", nil
	}
	return " WHERE date LIKE ?", []any{monthKey + "%"}
}

// Expenses

func (s *Store) ListExpenses(ctx context.Context, monthKey string) ([]core.Expense, error) {
	clause, args := monthClause(monthKey)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, amount, category, sub_category, type, note FROM expenses"+clause+" ORDER BY date ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var e core.Expense
		var amount string
		if err := rows.Scan(&e.ID, &e.Date, &amount, &e.Category, &e.SubCategory, &e.Type, &e.Note); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Amount = amountFromText(amount)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (id, date, amount, category, sub_category, type, note) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Date, e.Amount.String(), e.Category, e.SubCategory, e.Type, e.Note)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id string, e core.Expense) (core.Expense, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET date = ?, amount = ?, category = ?, sub_category = ?, type = ?, note = ? WHERE id = ?",
		e.Date, e.Amount.String(), e.Category, e.SubCategory, e.Type, e.Note, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Expense{}, store.ErrNotFound
	}
	e.ID = id
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Workouts

func (s *Store) ListWorkouts(ctx context.Context, monthKey string) ([]core.Workout, error) {
	clause, args := monthClause(monthKey)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, workout_type, intensity, weight, body_fat, feel, drink, note FROM workouts"+clause+" ORDER BY date ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var out []core.Workout
	for rows.Next() {
		var w core.Workout
		var weight, bodyFat sql.NullFloat64
		if err := rows.Scan(&w.ID, &w.Date, &w.WorkoutType, &w.Intensity, &weight, &bodyFat, &w.Feel, &w.Drink, &w.Note); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		if weight.Valid {
			w.Weight = &weight.Float64
		}
		if bodyFat.Valid {
			w.BodyFat = &bodyFat.Float64
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) CreateWorkout(ctx context.Context, w core.Workout) (core.Workout, error) {
	w.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO workouts (id, date, workout_type, intensity, weight, body_fat, feel, drink, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		w.ID, w.Date, w.WorkoutType, w.Intensity, nullFloat(w.Weight), nullFloat(w.BodyFat), w.Feel, w.Drink, w.Note)
	if err != nil {
		return core.Workout{}, fmt.Errorf("create workout: %w", err)
	}
	return w, nil
}

func (s *Store) UpdateWorkout(ctx context.Context, id string, w core.Workout) (core.Workout, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE workouts SET date = ?, workout_type = ?, intensity = ?, weight = ?, body_fat = ?, feel = ?, drink = ?, note = ? WHERE id = ?",
		w.Date, w.WorkoutType, w.Intensity, nullFloat(w.Weight), nullFloat(w.BodyFat), w.Feel, w.Drink, w.Note, id)
	if err != nil {
		return core.Workout{}, fmt.Errorf("update workout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Workout{}, store.ErrNotFound
	}
	w.ID = id
	return w, nil
}

func (s *Store) DeleteWorkout(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workouts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Drink logs. The date column carries a unique index; upsert replaces
// the whole row for an existing date.

func (s *Store) ListDrinkLogs(ctx context.Context, monthKey string) ([]core.DrinkLog, error) {
	clause, args := monthClause(monthKey)
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, drank, name, level, duration_hours, reasons, other_reason, venue, start_time, enjoyment, regret, would_repeat, note FROM drink_logs"+clause+" ORDER BY date DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("list drink logs: %w", err)
	}
	defer rows.Close()

	var out []core.DrinkLog
	for rows.Next() {
		d, err := scanDrinkLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDrinkLog(rows *sql.Rows) (core.DrinkLog, error) {
	var d core.DrinkLog
	var duration sql.NullFloat64
	var enjoyment sql.NullInt64
	var wouldRepeat sql.NullBool
	var reasons string
	if err := rows.Scan(&d.ID, &d.Date, &d.Drank, &d.Name, &d.Level, &duration, &reasons,
		&d.OtherReason, &d.Venue, &d.StartTime, &enjoyment, &d.Regret, &wouldRepeat, &d.Note); err != nil {
		return core.DrinkLog{}, fmt.Errorf("scan drink log: %w", err)
	}
	if duration.Valid {
		d.DurationHours = &duration.Float64
	}
	if enjoyment.Valid {
		v := int(enjoyment.Int64)
		d.Enjoyment = &v
	}
	if wouldRepeat.Valid {
		d.WouldRepeat = &wouldRepeat.Bool
	}
	if reasons != "" {
		// Tolerate corrupt tag sets the same as any other bad field.
		_ = json.Unmarshal([]byte(reasons), &d.Reasons)
	}
	return d, nil
}

func encodeReasons(reasons []string) (string, error) {
	if len(reasons) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(reasons)
	if err != nil {
		return "", fmt.Errorf("encode reasons: %w", err)
	}
	return string(b), nil
}

// UpsertDrinkLog writes the day's log in a single statement; the unique
// date index resolves the conflict, so concurrent upserts for the same
// date cannot race. The existing row keeps its id across replacement.
func (s *Store) UpsertDrinkLog(ctx context.Context, d core.DrinkLog) (core.DrinkLog, error) {
	reasons, err := encodeReasons(d.Reasons)
	if err != nil {
		return core.DrinkLog{}, err
	}

	var id string
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO drink_logs (id, date, drank, name, level, duration_hours, reasons, other_reason, venue, start_time, enjoyment, regret, would_repeat, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   drank = excluded.drank, name = excluded.name, level = excluded.level,
		   duration_hours = excluded.duration_hours, reasons = excluded.reasons,
		   other_reason = excluded.other_reason, venue = excluded.venue,
		   start_time = excluded.start_time, enjoyment = excluded.enjoyment,
		   regret = excluded.regret, would_repeat = excluded.would_repeat,
		   note = excluded.note
		 RETURNING id`,
		uuid.NewString(), d.Date, d.Drank, d.Name, d.Level, nullFloat(d.DurationHours), reasons, d.OtherReason,
		d.Venue, d.StartTime, nullInt(d.Enjoyment), d.Regret, nullBool(d.WouldRepeat), d.Note).Scan(&id)
	if err != nil {
		return core.DrinkLog{}, fmt.Errorf("upsert drink log: %w", err)
	}
	d.ID = id
	return d, nil
}

func (s *Store) UpdateDrinkLog(ctx context.Context, id string, d core.DrinkLog) (core.DrinkLog, error) {
	reasons, err := encodeReasons(d.Reasons)
	if err != nil {
		return core.DrinkLog{}, err
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE drink_logs SET date = ?, drank = ?, name = ?, level = ?, duration_hours = ?, reasons = ?, other_reason = ?, venue = ?, start_time = ?, enjoyment = ?, regret = ?, would_repeat = ?, note = ? WHERE id = ?",
		d.Date, d.Drank, d.Name, d.Level, nullFloat(d.DurationHours), reasons, d.OtherReason,
		d.Venue, d.StartTime, nullInt(d.Enjoyment), d.Regret, nullBool(d.WouldRepeat), d.Note, id)
	if err != nil {
		return core.DrinkLog{}, fmt.Errorf("update drink log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.DrinkLog{}, store.ErrNotFound
	}
	d.ID = id
	return d, nil
}

func (s *Store) DeleteDrinkLog(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM drink_logs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete drink log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Todos

func (s *Store) ListTodos(ctx context.Context) ([]core.Todo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, text, done, created_at FROM todos ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var out []core.Todo
	for rows.Next() {
		var td core.Todo
		var createdAt string
		if err := rows.Scan(&td.ID, &td.Text, &td.Done, &createdAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		td.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, td)
	}
	return out, rows.Err()
}

func (s *Store) CreateTodo(ctx context.Context, td core.Todo) (core.Todo, error) {
	td.ID = uuid.NewString()
	if td.CreatedAt.IsZero() {
		td.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO todos (id, text, done, created_at) VALUES (?, ?, ?, ?)",
		td.ID, td.Text, td.Done, td.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return core.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return td, nil
}

func (s *Store) UpdateTodo(ctx context.Context, id string, td core.Todo) (core.Todo, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE todos SET text = ?, done = ? WHERE id = ?", td.Text, td.Done, id)
	if err != nil {
		return core.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Todo{}, store.ErrNotFound
	}
	td.ID = id
	return td, nil
}

func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Users

func (s *Store) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash, role, is_active FROM users WHERE email = ? AND is_active = 1",
		strings.ToLower(email)).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, store.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(u.Email)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash, role, is_active) VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.IsActive)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Snapshots

func (s *Store) SaveSnapshot(ctx context.Context, snap store.Snapshot) error {
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (month_key, tier, taken_at, data) VALUES (?, ?, ?, ?)
		 ON CONFLICT(month_key, tier) DO UPDATE SET taken_at = excluded.taken_at, data = excluded.data`,
		snap.MonthKey, snap.Tier, snap.TakenAt.Format(time.RFC3339Nano), snap.Data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, monthKey, tier string) (store.Snapshot, error) {
	snap := store.Snapshot{MonthKey: monthKey, Tier: tier}
	var takenAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT taken_at, data FROM snapshots WHERE month_key = ? AND tier = ?", monthKey, tier).
		Scan(&takenAt, &snap.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	snap.TakenAt, _ = time.Parse(time.RFC3339Nano, takenAt)
	return snap, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
