package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"mydash/internal/budget"
	"mydash/internal/core"
	"mydash/internal/store"
)

var monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// parseMonthKey extracts the month from the ?month= query parameter,
// defaulting to the current month.
func parseMonthKey(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.CurrentMonthKey(time.Now()), nil
	}
	if !monthKeyPattern.MatchString(v) {
		return "", fmt.Errorf("invalid month %q: want YYYY-MM", v)
	}
	return v, nil
}

// parseTier extracts the budget tier from the ?tier= query parameter.
func parseTier(r *http.Request, fallback budget.Tier) (budget.Tier, error) {
	v := strings.TrimSpace(r.URL.Query().Get("tier"))
	if v == "" {
		return fallback, nil
	}
	return budget.ParseTier(v)
}

// writeJSON marshals v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps an error to a JSON error payload. Store misses become
// 404s, validation failures 422s, everything else the passed status.
func writeError(w http.ResponseWriter, status int, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case isValidationError(err):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidAmount,
		core.ErrEmptyCategory,
		core.ErrEmptyType,
		core.ErrInvalidLevel,
		core.ErrInvalidRegret,
		core.ErrEmptyText,
		budget.ErrUnknownTier,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// decodeBody decodes a JSON request body into v, rejecting unknown junk
// bodies but tolerating unknown fields.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
