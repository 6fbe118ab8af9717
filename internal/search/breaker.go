package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
	// Interval clears failure counts while closed. Zero keeps counts until the circuit opens.
	Interval time.Duration
	// OnStateChange is invoked whenever the breaker moves between states.
	OnStateChange func(name string, from, to gobreaker.State)
}

// Breaker wraps a Provider so repeated upstream failures fail fast.
// Only ErrUnavailable counts as a failure; malformed replies mean the
// provider is reachable.
type Breaker struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*Response]
}

// NewBreaker wraps inner with a circuit breaker named name.
func NewBreaker(name string, inner Provider, cfg BreakerConfig) *Breaker {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "search:" + name,
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: cfg.OnStateChange,
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
	})

	return &Breaker{inner: inner, breaker: cb}
}

// Search routes the call through the circuit breaker.
func (b *Breaker) Search(ctx context.Context, query string) (*Response, error) {
	resp, err := b.breaker.Execute(func() (*Response, error) {
		return b.inner.Search(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return resp, nil
}

// State returns the current breaker state for health checks.
func (b *Breaker) State() gobreaker.State {
	return b.breaker.State()
}

// CheckHealth reports an error while the circuit is open.
func (b *Breaker) CheckHealth(ctx context.Context) error {
	if b.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: circuit open", ErrUnavailable)
	}
	return nil
}

var _ Provider = (*Breaker)(nil)
