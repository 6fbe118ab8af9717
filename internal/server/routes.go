package server

import (
	"github.com/namelens/searchrelay/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(opts Options) {
	if opts.Chat != nil {
		s.router.Post("/chat", opts.Chat.Chat)
		s.router.Options("/chat", opts.Chat.Preflight)
	}

	health := opts.Health
	if health == nil {
		health = handlers.NewHealthManager(handlers.CurrentBuild().Version)
	}
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/health/startup", health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)

	metricsSource := opts.Metrics
	if metricsSource == nil {
		metricsSource = exporterSource{}
	}
	s.router.Get("/metrics", MetricsHandler(metricsSource))
}
