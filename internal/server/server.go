// Package server provides the HTTP server and API handlers for the MES
// dashboard engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/config"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/dashboard"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/lifecycle"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/types"
	"github.com/jakeyac7-sketch/MES-Capstone-Team/internal/version"
)

// Server is the HTTP server for the dashboard API.
type Server struct {
	cfg        config.DashboardConfig
	engine     *dashboard.Engine
	log        *logrus.Logger
	httpServer *http.Server
}

// New creates a new HTTP server that fronts the given engine.
func New(cfg config.DashboardConfig, engine *dashboard.Engine, log *logrus.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{cfg: cfg, engine: engine, log: log}
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/scheduler/pause", s.handlePause)
	mux.HandleFunc("/api/v1/scheduler/resume", s.handleResume)
	mux.HandleFunc("/api/v1/scheduler/refresh", s.handleRefresh)
	mux.HandleFunc("/api/v1/scheduler/interval", s.handleInterval)
	mux.HandleFunc("/api/v1/view", s.handleView)
	mux.HandleFunc("/api/v1/monitoring", s.handleMonitoring)
	mux.HandleFunc("/api/v1/filters", s.handleFilters)
	mux.HandleFunc("/api/v1/alerts/resolution", s.handleResolution)
	mux.HandleFunc("/api/v1/alerts/resolution/open", s.handleResolutionOpen)
	mux.HandleFunc("/api/v1/alerts/resolution/close", s.handleResolutionClose)
	mux.HandleFunc("/api/v1/alerts/resolution/toggle", s.handleResolutionToggle)
	mux.HandleFunc("/api/v1/alerts/resolution/acknowledge", s.handleResolutionAck)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// ListenAndServe starts the HTTP server. It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.cfg.HTTPAddr).Info("Dashboard listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.Scheduler().Pause()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.Scheduler().Resume()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.engine.RefreshNow()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		IntervalSeconds int `json:"interval_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	d := time.Duration(req.IntervalSeconds) * time.Second
	if !dashboard.AllowedInterval(d) {
		http.Error(w, "Interval not offered", http.StatusBadRequest)
		return
	}
	s.engine.Scheduler().SetInterval(d)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		View  string `json:"view"`
		Stage string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.View != "" {
		if err := s.engine.SetView(types.View(req.View)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if s.engine.View() == types.ViewQueue {
		s.engine.SetStage(req.Stage)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMonitoring(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Tight bool `json:"tight"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	s.engine.SetTightMonitoring(req.Tight)
	w.WriteHeader(http.StatusNoContent)
}

// handleFilters dispatches the filter intents: set-field, clear, adopt-cell,
// adopt-alert, and focus-conveyor.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Intent string `json:"intent"`
		Field  string `json:"field"`
		Value  string `json:"value"`
		Column string `json:"column"`
		Key    string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	switch req.Intent {
	case "set-field":
		kind := types.IdentifierKind(req.Field)
		valid := false
		for _, k := range types.IdentifierKinds() {
			if k == kind {
				valid = true
			}
		}
		if !valid {
			http.Error(w, "Unknown filter field", http.StatusBadRequest)
			return
		}
		s.engine.SetFilter(kind, req.Value)
		w.WriteHeader(http.StatusNoContent)
	case "clear":
		s.engine.ClearFilters()
		w.WriteHeader(http.StatusNoContent)
	case "adopt-cell":
		adopted := s.engine.AdoptFromCell(req.Column, req.Value)
		writeJSON(w, http.StatusOK, map[string]bool{"adopted": adopted})
	case "adopt-alert":
		if err := s.engine.AdoptFromAlert(req.Key); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "focus-conveyor":
		writeJSON(w, http.StatusOK, map[string]bool{"focused": s.engine.FocusFirstConveyor()})
	default:
		http.Error(w, "Unknown filter intent", http.StatusBadRequest)
	}
}

func (s *Server) handleResolution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rv, err := s.engine.Resolution(r.URL.Query().Get("key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type resolutionRequest struct {
	Key  string `json:"key"`
	Step int    `json:"step"`
}

func (s *Server) decodeResolution(w http.ResponseWriter, r *http.Request) (resolutionRequest, bool) {
	var req resolutionRequest
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (s *Server) handleResolutionOpen(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResolution(w, r)
	if !ok {
		return
	}
	if _, err := s.engine.OpenResolution(req.Key); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	rv, err := s.engine.Resolution(req.Key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) handleResolutionClose(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResolution(w, r)
	if !ok {
		return
	}
	s.engine.CloseResolution(req.Key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResolutionToggle(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResolution(w, r)
	if !ok {
		return
	}
	if err := s.engine.ToggleStep(req.Key, req.Step); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rv, err := s.engine.Resolution(req.Key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (s *Server) handleResolutionAck(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeResolution(w, r)
	if !ok {
		return
	}
	if err := s.engine.Acknowledge(req.Key); err != nil {
		var sre *lifecycle.StepsRemainingError
		if errors.As(err, &sre) {
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":     err.Error(),
				"remaining": sre.Remaining,
			})
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
