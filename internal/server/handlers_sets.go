package server

import (
	"net/http"
	"strconv"
)

// handleRefresh handles POST /api/refresh — run the collection and ranking
// pipeline now instead of waiting for the scheduler. ?force=true re-collects
// every product regardless of freshness.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	if err := s.app.RankingService.Refresh(r.Context(), force); err != nil {
		WriteError(w, http.StatusInternalServerError, "Refresh failed: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"force":  force,
	})
}

// handleSetRankings handles GET /api/sets/rankings. Every snapshot carries
// the full metric set; ?timeframe only tells a client which lookback to
// emphasize and is echoed back.
func (s *Server) handleSetRankings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	timeframe := r.URL.Query().Get("timeframe")
	switch timeframe {
	case "", "30d", "90d", "365d":
	default:
		WriteError(w, http.StatusBadRequest, "timeframe must be one of 30d, 90d, 365d")
		return
	}
	if timeframe == "" {
		timeframe = "90d"
	}

	rankings, err := s.app.RankingService.GetRankings(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load rankings: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(rankings),
		"timeframe": timeframe,
		"rankings":  rankings,
	})
}

// handleSetMetrics handles GET /api/sets/{code}/metrics.
func (s *Server) handleSetMetrics(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	code := PathParam(r, "/api/sets/", "/metrics")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "Set code is required")
		return
	}

	metrics, err := s.app.RankingService.GetSetMetrics(r.Context(), code)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, "Set '"+code+"' not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load metrics: "+err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, metrics)
}
