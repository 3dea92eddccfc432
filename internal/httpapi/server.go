// Package httpapi provides the HTTP API for the strategy visualization
// viewer, serving chart specs, selection state, and the metrics catalog in
// JSON format.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"stratviz/internal/store"
	"stratviz/internal/viewer"
)

// Options enumerates the choices offered by the front-end dropdowns. The
// sets are advisory: values outside them still pass through to lookup.
type Options struct {
	Strategies []string `json:"strategies"`
	Timeframes []string `json:"timeframes"`
	Targets    []string `json:"targets"`
	Benchmarks []string `json:"benchmarks"`
}

// Server serves the viewer HTTP API.
type Server struct {
	ctrl    *viewer.Controller
	hub     *viewer.Hub
	metrics store.MetricsStore
	options Options
	log     *slog.Logger
}

// NewServer creates a viewer API server.
func NewServer(ctrl *viewer.Controller, hub *viewer.Hub, metrics store.MetricsStore, options Options, log *slog.Logger) *Server {
	return &Server{
		ctrl:    ctrl,
		hub:     hub,
		metrics: metrics,
		options: options,
		log:     log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /api/selection", s.handleSelection)
	mux.HandleFunc("POST /api/selection/{field}", s.handleSetSelection)
	mux.HandleFunc("GET /api/options", s.handleOptions)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.ServeWS(s.ctrl))
	}
}

// Handler returns an http.Handler with CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// handleChart composes a chart for an arbitrary selection without touching
// the session state. Absent parameters fall back to the current selection's
// values, so a front-end can change one dropdown at a time.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel := s.ctrl.Selection()
	q := r.URL.Query()
	if v := q.Get("strategy"); v != "" {
		sel.Strategy = v
	}
	if v := q.Get("timeframe"); v != "" {
		sel.Timeframe = v
	}
	if v := q.Get("benchmark"); v != "" {
		sel.Benchmark = v
	}
	if v := q.Get("target"); v != "" {
		sel.Target = v
	}

	spec := s.ctrl.ComposeFor(r.Context(), sel)
	writeJSON(w, ChartResponse{Selection: sel, Chart: spec})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ChartResponse{Selection: s.ctrl.Selection(), Chart: s.ctrl.Spec()})
}

// handleSetSelection applies one field change as one controller transition.
func (s *Server) handleSetSelection(w http.ResponseWriter, r *http.Request) {
	field := r.PathValue("field")

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	spec, err := s.ctrl.Set(r.Context(), field, body.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, ChartResponse{Selection: s.ctrl.Selection(), Chart: spec})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.options)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeJSON(w, RunsResponse{Runs: []RunJSON{}})
		return
	}

	records, err := s.metrics.ListMetrics(r.Context())
	if err != nil {
		s.log.Warn("listing metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	runs := make([]RunJSON, 0, len(records))
	for _, m := range records {
		runs = append(runs, convertRun(m))
	}
	writeJSON(w, RunsResponse{Runs: runs})
}
