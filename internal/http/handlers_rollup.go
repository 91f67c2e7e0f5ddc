package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleRollup(w http.ResponseWriter, r *http.Request) {
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

	cacheKey := monthKey + "|" + string(tier)
	if cached, ok := s.rollupCache.Get(cacheKey); ok {
		slog.DebugContext(r.Context(), "Rollup cache hit", "month", monthKey, "tier", tier)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := s.rollups.Rollup(r.Context(), monthKey, tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.rollupCache.Set(cacheKey, result)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
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

	cacheKey := monthKey + "|" + string(tier)
	if cached, ok := s.projectionCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	rows, err := s.rollups.Projection(r.Context(), monthKey, tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.projectionCache.Set(cacheKey, rows)
	writeJSON(w, http.StatusOK, rows)
}
