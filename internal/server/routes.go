package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/cardfolio/cardfolio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/refresh", s.handleRefresh)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Sets
	mux.HandleFunc("/api/sets/rankings", s.handleSetRankings)
	mux.HandleFunc("/api/sets/", s.routeSets)

	// Portfolios
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)
}

// routeSets dispatches /api/sets/{code}/... paths.
func (s *Server) routeSets(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/sets/")
	switch {
	case strings.HasSuffix(rest, "/metrics"):
		s.handleSetMetrics(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routePortfolios dispatches /api/portfolios/{id}/... paths.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	switch {
	case strings.HasSuffix(rest, "/valuation/chart.png"):
		s.handleValuationChart(w, r)
	case strings.HasSuffix(rest, "/valuation"):
		s.handleValuation(w, r)
	case strings.HasSuffix(rest, "/lots"):
		s.handleLots(w, r)
	case !strings.Contains(rest, "/") && rest != "":
		s.handlePortfolioGet(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
