package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the pipeline is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Status describes the reference data a running instance scores stations
// against. It is fixed at startup and echoed by the health endpoints so an
// operator can confirm which grid an instance loaded.
type Status struct {
	GridPoints  int     `json:"grid_points"`
	CutoffMiles float64 `json:"cutoff_miles"`
}

type healthResponse struct {
	Status      string  `json:"status"`
	GridPoints  int     `json:"grid_points"`
	CutoffMiles float64 `json:"cutoff_miles"`
	Error       string  `json:"error,omitempty"`
}

// Server exposes health, readiness, and metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	status     Status
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, and /metrics
// routes. status carries the grid the instance loaded; an instance with no
// grid points never reports ready, since it could only emit empty neighbor
// sets.
func NewServer(addr string, ready ReadinessChecker, status Status, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		status: status,
		ready:  ready,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr,
		"grid_points", s.status.GridPoints, "cutoff_miles", s.status.CutoffMiles)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeStatus(w, http.StatusOK, "healthy", "")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.status.GridPoints == 0 {
		s.writeStatus(w, http.StatusServiceUnavailable, "not ready", "no grid points loaded")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		s.writeStatus(w, http.StatusServiceUnavailable, "not ready", err.Error())
		return
	}
	s.writeStatus(w, http.StatusOK, "ready", "")
}

func (s *Server) writeStatus(w http.ResponseWriter, code int, status, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := healthResponse{
		Status:      status,
		GridPoints:  s.status.GridPoints,
		CutoffMiles: s.status.CutoffMiles,
		Error:       errMsg,
	}
	json.NewEncoder(w).Encode(resp) //nolint:errcheck // best-effort health response
}
