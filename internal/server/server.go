// Package server assembles the chi router and owns the HTTP listener.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/namelens/searchrelay/internal/config"
	"github.com/namelens/searchrelay/internal/observability"
	"github.com/namelens/searchrelay/internal/server/handlers"
	servermw "github.com/namelens/searchrelay/internal/server/middleware"
)

// Options collects what the router needs. Chat and Health are required.
type Options struct {
	Server  config.ServerConfig
	CORS    config.CORSConfig
	Chat    *handlers.ChatHandler
	Health  *handlers.HealthManager
	Metrics MetricsSource
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
}

// New creates a new HTTP server instance
func New(opts Options) *Server {
	r := chi.NewRouter()

	// RealIP → CORS → RequestID → Metrics → Recovery. CORS sits outside
	// everything else so 404, 405 and panic replies carry it too.
	r.Use(middleware.RealIP)
	r.Use(servermw.CORS(servermw.CORSOptions{
		AllowedHeaders: opts.CORS.AllowedHeaders,
		Debug:          opts.CORS.Debug,
	}))
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	s := &Server{
		router: r,
		cfg:    opts.Server,
	}
	s.registerRoutes(opts)

	s.server = &http.Server{
		Addr:         opts.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
		IdleTimeout:  opts.Server.IdleTimeout,
	}

	return s
}

// Start starts the HTTP server. It blocks until the listener stops.
func (s *Server) Start() error {
	if logger := observability.Logger(); logger != nil {
		logger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", s.server.Addr))
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if logger := observability.Logger(); logger != nil {
		logger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}
