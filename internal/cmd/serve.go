package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/namelens/searchrelay/internal/config"
	errwrap "github.com/namelens/searchrelay/internal/errors"
	"github.com/namelens/searchrelay/internal/metrics"
	"github.com/namelens/searchrelay/internal/observability"
	"github.com/namelens/searchrelay/internal/server"
	"github.com/namelens/searchrelay/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// credentialsHealthChecker reports whether the key and engine ID are set.
type credentialsHealthChecker struct {
	search config.SearchConfig
}

func (c credentialsHealthChecker) CheckHealth(ctx context.Context) error {
	if !c.search.HasCredentials() {
		return errwrap.NewConfigInvalidError("search api key or engine id not configured")
	}
	return nil
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP relay",
	Long: `Start the HTTP relay with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read the config file (changes apply on restart)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		observability.InitServerLogger(config.AppName, cfg.Logging.Level, cfg.Logging.Environment)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
			metrics.SetServerStartTime(time.Now().Unix())
		}

		bundle, err := buildRelay(cmd.Context(), cfg.Search)
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "search provider initialization failed")
		}

		if !cfg.Search.HasCredentials() {
			logger.Warn("Search credentials are not configured; chat requests will fail upstream",
				zap.Bool("api_key_set", cfg.Search.APIKey != ""),
				zap.Bool("engine_id_set", cfg.Search.EngineID != ""))
		}

		logger.Info("Initializing server",
			zap.String("service", config.AppName),
			zap.String("version", versionInfo.Version),
			zap.String("addr", cfg.Server.Addr()),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()),
			zap.Bool("breaker_enabled", cfg.Search.Breaker.Enabled),
			zap.Duration("search_timeout", cfg.Search.Timeout))

		hm := handlers.NewHealthManager(versionInfo.Version)
		hm.RegisterChecker("search_credentials", credentialsHealthChecker{search: cfg.Search})
		if bundle.breaker != nil {
			hm.RegisterChecker("search_breaker", bundle.breaker)
		}
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}

		srv := server.New(server.Options{
			Server: cfg.Server,
			CORS:   cfg.CORS,
			Chat:   handlers.NewChatHandler(bundle.relay),
			Health: hm,
		})

		// Shutdown handlers run LIFO: the HTTP server stops before the logger flushes.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		// The running relay keeps its startup config; SIGHUP only validates the file.
		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: re-reading config file")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					logger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				logger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}
			if _, err := config.Load(viper.GetViper()); err != nil {
				return errwrap.WrapConfigInvalid(ctx, err, "reloaded config is invalid")
			}

			logger.Info("Configuration file is valid; restart to apply changes",
				zap.String("file", viper.ConfigFileUsed()))
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
