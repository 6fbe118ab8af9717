package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls int
	err   error
}

func (s *stubProvider) Search(ctx context.Context, query string) (*Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Response{Items: []Item{{Title: query}}}, nil
}

func TestBreakerOpensAfterConsecutiveUnavailable(t *testing.T) {
	inner := &stubProvider{err: fmt.Errorf("%w: dial tcp", ErrUnavailable)}
	b := NewBreaker("test", inner, BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := b.Search(context.Background(), "q")
		require.ErrorIs(t, err, ErrUnavailable)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())
	require.Error(t, b.CheckHealth(context.Background()))

	_, err := b.Search(context.Background(), "q")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, 2, inner.calls, "open circuit must not reach the provider")
}

func TestBreakerIgnoresMalformedReplies(t *testing.T) {
	inner := &stubProvider{err: fmt.Errorf("%w: bad json", ErrMalformed)}
	b := NewBreaker("test", inner, BreakerConfig{MaxFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := b.Search(context.Background(), "q")
		require.ErrorIs(t, err, ErrMalformed)
	}
	require.Equal(t, gobreaker.StateClosed, b.State())
	require.NoError(t, b.CheckHealth(context.Background()))
}

func TestBreakerPassesResults(t *testing.T) {
	b := NewBreaker("test", &stubProvider{}, BreakerConfig{})

	resp, err := b.Search(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", resp.Items[0].Title)
}
