// Package config loads the relay's settings from defaults, an optional YAML
// file, .env files and the environment. The result is decoded once into an
// immutable Config that is passed to constructors; nothing reads viper after
// startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Bare variable names kept for compatibility with existing deployments.
const (
	EnvGoogleAPIKey   = "GOOGLE_API_KEY"
	EnvSearchEngineID = "SEARCH_ENGINE_ID"
)

// DefaultBaseURL is the Custom Search JSON API host.
const DefaultBaseURL = "https://customsearch.googleapis.com/"

// SetDefaults registers every key so AllSettings and AutomaticEnv see it.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Search defaults
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.base_url", DefaultBaseURL)
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.breaker.enabled", false)
	v.SetDefault("search.breaker.max_failures", 5)
	v.SetDefault("search.breaker.timeout", "30s")
	v.SetDefault("search.breaker.interval", "60s")

	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "*"})
	v.SetDefault("cors.debug", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.environment", "development")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

// BindEnv wires the SEARCHRELAY_ prefix and the bare credential variables.
// A prefixed variable wins over its bare counterpart.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("search.api_key", EnvPrefix+"_SEARCH_API_KEY", EnvGoogleAPIKey); err != nil {
		return fmt.Errorf("bind search.api_key: %w", err)
	}
	if err := v.BindEnv("search.engine_id", EnvPrefix+"_SEARCH_ENGINE_ID", EnvSearchEngineID); err != nil {
		return fmt.Errorf("bind search.engine_id: %w", err)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are skipped and existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load decodes the current viper state into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Search.APIKey = strings.TrimSpace(cfg.Search.APIKey)
	cfg.Search.EngineID = strings.TrimSpace(cfg.Search.EngineID)
	if strings.TrimSpace(cfg.Search.BaseURL) == "" {
		cfg.Search.BaseURL = DefaultBaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New builds a fresh viper with defaults and environment bindings and
// decodes it. Tests and the search command use it directly.
func New() (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return nil, err
	}
	return Load(v)
}
