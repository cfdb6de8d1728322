package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// runRequest is the body for triggering a cycle or backtest
type runRequest struct {
	Notes          string                 `json:"notes"`
	OverrideConfig map[string]interface{} `json:"override_config"`
	// Accepted for camelCase clients
	OverrideConfigAlias map[string]interface{} `json:"overrideConfig"`
}

func (r runRequest) override() map[string]interface{} {
	if r.OverrideConfig != nil {
		return r.OverrideConfig
	}
	return r.OverrideConfigAlias
}

// demoRequest is the body for triggering a demo simulation
type demoRequest struct {
	Notes          string  `json:"notes"`
	InitialBalance float64 `json:"initial_balance"`
}

// handleRoot returns basic information about the API
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":      "OV Trader API",
		"version":   "1.0.0",
		"endpoints": []string{"/dashboard", "/runs", "/config", "/backtests", "/demos"},
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard returns an aggregated dashboard payload
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Dashboard())
}

// handleGetConfig fetches the current configuration
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.service.GetConfig()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// handleUpdateConfig merges a partial configuration update
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	cfg, err := s.service.UpdateConfig(payload)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg})
}

// handleListRuns returns trading cycle history
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 20)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": s.service.ListRuns(limit)})
}

// handleTriggerRun triggers a new trading cycle
func (s *Server) handleTriggerRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	record := s.service.RunCycle(req.Notes, req.override())
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"run": record})
}

// handleGetRun retrieves a specific trading run by identifier
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	record, ok := s.service.FindRun(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "Run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"run": record})
}

// handleListBacktests returns previously executed backtests
func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 10)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"backtests": s.service.ListBacktests(limit)})
}

// handleTriggerBacktest executes a backtest
func (s *Server) handleTriggerBacktest(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	record := s.service.RunBacktest(req.Notes, req.override())
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"backtest": record})
}

// handleListDemos returns previously executed demo simulations
func (s *Server) handleListDemos(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 5)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"demos": s.service.ListDemoRuns(limit)})
}

// handleTriggerDemo executes the sample demo scenario
func (s *Server) handleTriggerDemo(w http.ResponseWriter, r *http.Request) {
	var req demoRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	record := s.service.RunDemo(req.InitialBalance, req.Notes)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"demo": record})
}

// queryLimit parses the limit query parameter with a default
func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return fallback
	}
	return limit
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
