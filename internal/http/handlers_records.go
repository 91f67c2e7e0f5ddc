package http

import (
	"net/http"

	"mydash/internal/core"
)

// Expenses

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	monthKey, err := parseMonthKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	expenses, err := s.records.ListExpenses(r.Context(), monthKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeBody(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sanitizeExpense(&e)
	created, err := s.records.CreateExpense(r.Context(), e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var e core.Expense
	if err := decodeBody(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sanitizeExpense(&e)
	updated, err := s.records.UpdateExpense(r.Context(), r.PathValue("id"), e)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteExpense(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	w.WriteHeader(http.StatusNoContent)
}

func sanitizeExpense(e *core.Expense) {
	e.Category = sanitizeInput(e.Category)
	e.SubCategory = sanitizeInput(e.SubCategory)
	e.Type = sanitizeInput(e.Type)
	e.Note = sanitizeInput(e.Note)
}

// Workouts

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	monthKey, err := parseMonthKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	workouts, err := s.records.ListWorkouts(r.Context(), monthKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var wo core.Workout
	if err := decodeBody(r, &wo); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sanitizeWorkout(&wo)
	created, err := s.records.CreateWorkout(r.Context(), wo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var wo core.Workout
	if err := decodeBody(r, &wo); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sanitizeWorkout(&wo)
	updated, err := s.records.UpdateWorkout(r.Context(), r.PathValue("id"), wo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteWorkout(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	w.WriteHeader(http.StatusNoContent)
}

func sanitizeWorkout(wo *core.Workout) {
	wo.WorkoutType = sanitizeInput(wo.WorkoutType)
	wo.Feel = sanitizeInput(wo.Feel)
	wo.Note = sanitizeInput(wo.Note)
}

// Drink logs

func (s *Server) handleListDrinkLogs(w http.ResponseWriter, r *http.Request) {
	monthKey, err := parseMonthKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	logs, err := s.records.ListDrinkLogs(r.Context(), monthKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleUpsertDrinkLog replaces the day's log if one exists. The date
// identifies the log, so a body without one is rejected outright.
func (s *Server) handleUpsertDrinkLog(w http.ResponseWriter, r *http.Request) {
	var d core.DrinkLog
	if err := decodeBody(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if d.Date == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date is required"})
		return
	}
	// Logging a day at all means it was a drinking day.
	d.Drank = true
	sanitizeDrinkLog(&d)
	saved, err := s.records.UpsertDrinkLog(r.Context(), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleUpdateDrinkLog(w http.ResponseWriter, r *http.Request) {
	var d core.DrinkLog
	if err := decodeBody(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sanitizeDrinkLog(&d)
	updated, err := s.records.UpdateDrinkLog(r.Context(), r.PathValue("id"), d)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDrinkLog(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteDrinkLog(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.invalidateRollups()
	w.WriteHeader(http.StatusNoContent)
}

func sanitizeDrinkLog(d *core.DrinkLog) {
	d.Name = sanitizeInput(d.Name)
	d.OtherReason = sanitizeInput(d.OtherReason)
	d.Venue = sanitizeInput(d.Venue)
	d.Note = sanitizeInput(d.Note)
	for i, reason := range d.Reasons {
		d.Reasons[i] = sanitizeInput(reason)
	}
}

// Todos

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.records.ListTodos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var td core.Todo
	if err := decodeBody(r, &td); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	td.Text = sanitizeInput(td.Text)
	created, err := s.records.CreateTodo(r.Context(), td)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	var td core.Todo
	if err := decodeBody(r, &td); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	td.Text = sanitizeInput(td.Text)
	updated, err := s.records.UpdateTodo(r.Context(), r.PathValue("id"), td)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := s.records.DeleteTodo(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
