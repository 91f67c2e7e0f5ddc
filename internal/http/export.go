package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// handleExportMonth streams a CSV report of the month: a summary block,
// the per-category breakdown, then the raw expense lines. Sections are
// separated by a blank line so spreadsheet imports keep them apart.
func (s *Server) handleExportMonth(w http.ResponseWriter, r *http.Request) {
	monthKey, err := parseMonthKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tier, err := parseTier(r, s.defaultTier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.rollups.Rollup(r.Context(), monthKey, tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	rows, err := s.rollups.Projection(r.Context(), monthKey, tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	expenses, err := s.records.ListExpenses(r.Context(), monthKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "report-"+monthKey+".csv"))

	cw := csv.NewWriter(w)
	records := [][]string{
		{"month", result.MonthKey},
		{"tier", string(result.Tier)},
		{"total_spend", result.TotalSpend.String()},
		{"planned_total", result.PlannedTotal.String()},
		{"spend_variance", result.SpendVariance.String()},
		{"top_category", result.TopCategory},
		{"workout_sessions", strconv.Itoa(result.WorkoutCount)},
		{"active_workout_days", strconv.Itoa(result.ActiveWorkoutDays)},
		{"drinking_days", strconv.Itoa(result.Drinks.DrinkingDays)},
		{},
		{"category", "budget", "actual", "remaining", "status"},
	}
	for _, row := range rows {
		records = append(records, []string{
			row.Category,
			row.Budget.String(),
			row.Actual.String(),
			row.Remaining.String(),
			string(row.Status),
		})
	}
	records = append(records,
		[]string{},
		[]string{"date", "amount", "category", "sub_category", "type", "note"})
	for _, e := range expenses {
		records = append(records, []string{
			e.Date, e.Amount.String(), e.Category, e.SubCategory, e.Type, e.Note,
		})
	}

	if err := cw.WriteAll(records); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write CSV report", "error", err)
	}
}
