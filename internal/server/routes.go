package server

import (
	"github.com/domainsweep/domainsweep/internal/observability"
	"github.com/domainsweep/domainsweep/internal/server/handlers"
)

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.health.LivenessHandler)
	s.router.Get("/readyz", s.health.ReadinessHandler)
	s.router.Get("/version", handlers.VersionHandler)

	check := &handlers.CheckHandler{
		Checker: s.checker,
		Logger:  observability.ServerLogger,
	}
	s.router.Get("/v1/check", check.ServeHTTP)
}
