// Package server exposes domain checks over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/domainsweep/domainsweep/internal/config"
	"github.com/domainsweep/domainsweep/internal/observability"
	"github.com/domainsweep/domainsweep/internal/server/handlers"
	servermw "github.com/domainsweep/domainsweep/internal/server/middleware"
)

// Server is the HTTP server for serve mode.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig

	checker handlers.DomainCheck
	health  *handlers.HealthManager
}

// New assembles the router with middleware and routes. The checker serves
// /v1/check; health checkers registered via RegisterHealthChecker feed the
// readiness probe.
func New(cfg config.ServerConfig, checker handlers.DomainCheck) *Server {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestLogger(observability.ServerLogger))
	r.Use(chimiddleware.Recoverer)

	throttle := servermw.NewThrottle(cfg.Throttle.RequestsPerSecond, cfg.Throttle.Burst)
	r.Use(throttle.Handler)

	s := &Server{
		router:  r,
		cfg:     cfg,
		checker: checker,
		health:  handlers.NewHealthManager(),
	}

	s.registerRoutes()
	return s
}

// RegisterHealthChecker adds a named readiness check.
func (s *Server) RegisterHealthChecker(name string, checker handlers.HealthChecker) {
	s.health.RegisterChecker(name, checker)
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout, 120*time.Second),
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
