// Package server exposes the workflow engine over HTTP: submit a
// question, poll the workflow state, cancel it. Pollers always see a
// consistent snapshot; the engine does the work in the background.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Aspect5/fintel-v2-sub000/pkg/config"
	"github.com/Aspect5/fintel-v2-sub000/pkg/observability"
	"github.com/Aspect5/fintel-v2-sub000/pkg/workflow"
)

// Server wraps the HTTP listener around the workflow engine.
type Server struct {
	engine     *workflow.Engine
	logger     *slog.Logger
	httpServer *http.Server
	grace      time.Duration
}

func New(cfg *config.ServerConfig, engine *workflow.Engine, logger *slog.Logger) *Server {
	s := &Server{
		engine: engine,
		logger: logger,
		grace:  time.Duration(cfg.ShutdownGrace) * time.Second,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the route table. Exposed so tests can drive the
// handlers without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.metricsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	r.Post("/v1/workflows", s.handleCreateWorkflow)
	r.Get("/v1/workflows/{workflowID}", s.handleGetWorkflow)
	r.Delete("/v1/workflows/{workflowID}", s.handleCancelWorkflow)

	return r
}

// Start blocks serving HTTP until the listener fails or Stop runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests within the configured grace period.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.grace)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
