// Package server is the HTTP front end of the analyzer: agents upload scans,
// clients read reports back, and operators scrape health and metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/catalog"
	"github.com/dmitriimaksimovdevelop/pcdiag/internal/store"
)

// Options tunes the HTTP server. Zero values take the defaults.
type Options struct {
	RateLimit    float64
	Burst        int
	MaxBodyBytes int64
	CPUs         *catalog.Catalog
	GPUs         *catalog.Catalog
}

// DefaultMaxBodyBytes caps an uploaded scan document.
const DefaultMaxBodyBytes = 1 << 20

// Server is the pcdiag HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	store      store.Store
	cpus       *catalog.Catalog
	gpus       *catalog.Catalog
	maxBody    int64
	now        func() time.Time
}

// operationalPaths are neither logged nor rate limited.
var operationalPaths = []string{"/healthz", "/readyz", "/metrics"}

// New creates a new Server with middleware and routes.
func New(addr string, st store.Store, logger *zap.Logger, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:  logger,
		mux:     mux,
		store:   st,
		cpus:    opts.CPUs,
		gpus:    opts.GPUs,
		maxBody: opts.MaxBodyBytes,
		now:     time.Now,
	}
	if s.cpus == nil {
		s.cpus = catalog.DefaultCPUs()
	}
	if s.gpus == nil {
		s.gpus = catalog.DefaultGPUs()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	s.registerRoutes()

	// Middleware chain: outermost listed first.
	handler := Chain(mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger, operationalPaths),
		RateLimitMiddleware(opts.RateLimit, burst, operationalPaths),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// registerRoutes sets up all routes.
func (s *Server) registerRoutes() {
	// Unversioned operational endpoints.
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Versioned API endpoints.
	s.mux.HandleFunc("POST /api/v1/scans", s.handleCreateScan)
	s.mux.HandleFunc("GET /api/v1/scans", s.handleListScans)
	s.mux.HandleFunc("GET /api/v1/scans/latest", s.handleLatestScan)
	s.mux.HandleFunc("GET /api/v1/scans/{id}", s.handleGetScan)
	s.mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/v1/demo", s.handleDemo)
	s.mux.HandleFunc("GET /api/v1/catalog/{kind}", s.handleCatalog)
	s.mux.HandleFunc("GET /api/v1/rules", s.handleRules)

	// Upload path of the scan agent.
	s.mux.HandleFunc("POST /api/scan", s.handleCreateScan)
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealthz is a liveness probe -- returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadyz returns 200 when the store answers.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
