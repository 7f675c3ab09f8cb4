// Package httpapi exposes the operational HTTP surface: health, readiness,
// Prometheus metrics, and a status page. The assistant itself is driven
// through the session manager, not over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/munes-ai/munes/internal/config"
	"github.com/munes-ai/munes/internal/memory"
	"github.com/munes-ai/munes/internal/observability"
	"github.com/munes-ai/munes/internal/session"
)

type Server struct {
	cfg       config.Config
	store     *memory.Store
	sessions  *session.Manager
	startedAt time.Time
}

func New(cfg config.Config, store *memory.Store, sessions *session.Manager) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		sessions:  sessions,
		startedAt: time.Now(),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/statusz", s.handleStatus)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.store == nil || s.sessions == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "initializing",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"gemma_mode": s.cfg.GemmaMode,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"uptime_seconds": time.Since(s.startedAt).Seconds(),
		"gemma_mode":     s.cfg.GemmaMode,
	}
	if s.store != nil {
		body["memory"] = s.store.Stats()
	}
	if s.sessions != nil {
		body["live_sessions"] = s.sessions.ActiveCount()
		body["analytics"] = s.sessions.AnalyticsWindow(7)
	}
	respondJSON(w, http.StatusOK, body)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
