package cmd

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/namelens/searchrelay/internal/config"
	"github.com/namelens/searchrelay/internal/metrics"
	"github.com/namelens/searchrelay/internal/observability"
	"github.com/namelens/searchrelay/internal/relay"
	"github.com/namelens/searchrelay/internal/search"
	"github.com/namelens/searchrelay/internal/search/google"
)

// relayBundle is what both serve and search need from the search config.
type relayBundle struct {
	relay   *relay.Relay
	breaker *search.Breaker
}

// buildRelay wires the Google client, the optional breaker and the relay.
func buildRelay(ctx context.Context, cfg config.SearchConfig) (*relayBundle, error) {
	client, err := google.New(ctx, google.Config{
		APIKey:   cfg.APIKey,
		EngineID: cfg.EngineID,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		MaxItems: cfg.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("search client: %w", err)
	}

	bundle := &relayBundle{}
	var provider search.Provider = client
	if cfg.Breaker.Enabled {
		bundle.breaker = search.NewBreaker("google", client, search.BreakerConfig{
			MaxFailures:   cfg.Breaker.MaxFailures,
			Timeout:       cfg.Breaker.Timeout,
			Interval:      cfg.Breaker.Interval,
			OnStateChange: logBreakerTransition,
		})
		provider = bundle.breaker
	}

	bundle.relay = relay.New(provider, relay.Options{
		MaxResults: cfg.MaxResults,
		Secrets:    cfg.Secrets(),
	})
	return bundle, nil
}

func logBreakerTransition(name string, from, to gobreaker.State) {
	metrics.RecordBreakerTransition(name, from.String(), to.String())
	if logger := observability.Logger(); logger != nil {
		logger.Warn("Search circuit breaker changed state",
			zap.String("breaker", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()))
	}
}
