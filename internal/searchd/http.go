package searchd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/readex-eu/readex-ptf-sub000/internal/search"
	"github.com/readex-eu/readex-ptf-sub000/pkg/logger"
)

// HTTPServer serves discovery, health and metrics endpoints.
type HTTPServer struct {
	mux   *http.ServeMux
	store *SessionStore
}

// NewHTTPServer wires the routes. gatherer backs /metrics and may be nil to
// leave the route out.
func NewHTTPServer(store *SessionStore, gatherer prometheus.Gatherer) *HTTPServer {
	s := &HTTPServer{
		mux:   http.NewServeMux(),
		store: store,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/strategies", s.handleStrategies)
	s.mux.HandleFunc("/v1/sessions", s.handleSessions)
	s.mux.HandleFunc("/v1/sessions/", s.handleSessionByID)
	if gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  s.store.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type strategyView struct {
	Name       string `json:"name"`
	Summary    string `json:"summary"`
	Version    string `json:"version"`
	Compatible bool   `json:"compatible"`
}

func (s *HTTPServer) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	factories := search.Factories()
	out := make([]strategyView, 0, len(factories))
	for _, f := range factories {
		out = append(out, strategyView{
			Name:       f.Name,
			Summary:    f.Summary,
			Version:    versionString(f.Major, f.Minor),
			Compatible: f.Compatible(search.InterfaceMajor, search.InterfaceMinor),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"strategies": out})
}

type sessionView struct {
	ID        string `json:"id"`
	Strategy  string `json:"strategy"`
	CreatedAt string `json:"created_at"`
	Finished  bool   `json:"finished"`
}

func viewOfSession(sess *Session) sessionView {
	return sessionView{
		ID:        sess.ID,
		Strategy:  sess.Strategy,
		CreatedAt: sess.CreatedAt.Format(time.RFC3339Nano),
		Finished:  sess.Finished(),
	}
}

func (s *HTTPServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	sessions := s.store.List()
	out := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, viewOfSession(sess))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

// handleSessionByID serves GET and DELETE on /v1/sessions/{id}.
func (s *HTTPServer) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		sess, err := s.store.Get(id)
		if err != nil {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"session": viewOfSession(sess)})
	case http.MethodDelete:
		if err := s.store.Close(id); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				s.writeError(w, http.StatusNotFound, err.Error())
				return
			}
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		logger.Info("session closed over http", "session_id", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"error": msg})
}

func versionString(major, minor int) string {
	return strconv.Itoa(major) + "." + strconv.Itoa(minor)
}
