// Package server exposes the alignment engine as an HTTP JSON API.
//
// # Routes
//
//	POST /v1/align    {"pipelines": [p1, p2], "options": {...}}
//	POST /v1/merge    {"pipelines": [p1, ..., pn], "options": {...}}
//	POST /v1/compare  {"pipelines": [p1, ..., pn], "options": {...}}
//	GET  /healthz
//	GET  /metrics
//
// Options are decoded on top of the server defaults, so a request only needs
// to name the parameters it changes. Errors are returned as
//
//	{"error": {"code": "MALFORMED_INPUT", "message": "..."}}
//
// Every response carries an X-Request-ID header; a request ID sent by the
// client is kept.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pipemerge/pkg/engine"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Config configures a [Server].
type Config struct {
	// Runner executes the requests. Required.
	Runner *engine.Runner

	// Defaults are the options requests start from. Zero value means
	// [engine.DefaultOptions].
	Defaults *engine.Options

	// Metrics serves GET /metrics. Nil uses promhttp.Handler().
	Metrics http.Handler

	// MaxBodyBytes bounds request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner   *engine.Runner
	defaults engine.Options
	metrics  http.Handler
	maxBody  int64
	logger   *log.Logger
}

// New creates a server from cfg.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		defaults: engine.DefaultOptions(),
		metrics:  cfg.Metrics,
		maxBody:  cfg.MaxBodyBytes,
		logger:   cfg.Logger,
	}
	if cfg.Defaults != nil {
		s.defaults = *cfg.Defaults
	}
	if s.metrics == nil {
		s.metrics = promhttp.Handler()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/align", s.handleAlign)
		r.Post("/merge", s.handleMerge)
		r.Post("/compare", s.handleCompare)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
