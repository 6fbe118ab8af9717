package config

import (
	"fmt"
	"strings"
	"time"
)

// AppName is the binary, config and telemetry namespace name.
const AppName = "searchrelay"

// EnvPrefix prefixes every environment override (SEARCHRELAY_SERVER_PORT, ...).
const EnvPrefix = "SEARCHRELAY"

// Config is built once at startup and then treated as read-only.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Search  SearchConfig  `mapstructure:"search"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SearchConfig holds the provider credentials and call limits.
// APIKey and EngineID are secrets: never log or echo them.
type SearchConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	EngineID   string        `mapstructure:"engine_id"`
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

// Secrets lists the values that must be scrubbed from client-visible text.
func (s SearchConfig) Secrets() []string {
	return []string{s.APIKey, s.EngineID}
}

// HasCredentials reports whether both secrets are present.
func (s SearchConfig) HasCredentials() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.EngineID) != ""
}

// BreakerConfig configures the optional circuit breaker around the provider.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Interval    time.Duration `mapstructure:"interval"`
}

// CORSConfig controls preflight negotiation. Origins are always "*".
type CORSConfig struct {
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	Debug          bool     `mapstructure:"debug"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Environment is stamped on every structured log line
	Environment string `mapstructure:"environment"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated exporter port; /metrics on the main port proxies it
	Port int `mapstructure:"port"`
}

// Validate rejects settings the server cannot run with. Missing search
// credentials are allowed and surface as provider failures at call time.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %s", c.Search.Timeout)
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		return fmt.Errorf("search.max_results must be between 1 and 10, got %d", c.Search.MaxResults)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	return nil
}
