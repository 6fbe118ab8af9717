// Package relay turns a chat message into a search outcome: it validates the
// query, asks the provider, and trims the reply down to what the widget shows.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/namelens/searchrelay/internal/metrics"
	"github.com/namelens/searchrelay/internal/search"
)

const (
	// DefaultMaxResults is how many provider items reach the client.
	DefaultMaxResults = 3

	maxDetailLength = 200
	redacted        = "[REDACTED]"
)

// Options configures a Relay.
type Options struct {
	// MaxResults caps the number of results; zero means DefaultMaxResults.
	MaxResults int
	// Secrets are scrubbed from any diagnostic returned to the client.
	Secrets []string
}

// Relay is safe for concurrent use; it holds no per-request state.
type Relay struct {
	provider   search.Provider
	maxResults int
	secrets    []string
}

// New creates a relay around provider.
func New(provider search.Provider, opts Options) *Relay {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	var secrets []string
	for _, s := range opts.Secrets {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}

	return &Relay{
		provider:   provider,
		maxResults: maxResults,
		secrets:    secrets,
	}
}

// ParseQuery trims message and reports whether anything is left.
func ParseQuery(message string) (string, bool) {
	query := strings.TrimSpace(message)
	return query, query != ""
}

// Handle runs one query. It never returns an error: every failure is folded
// into the Outcome.
func (r *Relay) Handle(ctx context.Context, message string) (out Outcome) {
	query, ok := ParseQuery(message)
	if !ok {
		metrics.RecordRelayOutcome(string(KindInvalidInput))
		return Outcome{Kind: KindInvalidInput}
	}

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			out = Outcome{Kind: KindUnexpected, Detail: r.scrub(fmt.Sprint(p))}
		}
		metrics.RecordUpstreamCall(string(out.Kind), time.Since(start))
		metrics.RecordRelayOutcome(string(out.Kind))
	}()

	if r.provider == nil {
		return Outcome{Kind: KindUnexpected, Detail: "search provider is not configured"}
	}

	resp, err := r.provider.Search(ctx, query)
	if err != nil {
		return r.failure(err)
	}

	return r.normalize(resp)
}

func (r *Relay) failure(err error) Outcome {
	if errors.Is(err, search.ErrUnavailable) {
		return Outcome{Kind: KindUpstreamError}
	}
	return Outcome{Kind: KindUnexpected, Detail: r.scrub(err.Error())}
}

// normalize keeps the first maxResults items in provider order.
func (r *Relay) normalize(resp *search.Response) Outcome {
	if resp == nil || len(resp.Items) == 0 {
		return Outcome{Kind: KindEmpty}
	}

	items := resp.Items
	if len(items) > r.maxResults {
		items = items[:r.maxResults]
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		results = append(results, Result{
			Title: item.Title,
			Link:  item.Link,
			Image: item.Image,
		})
	}

	return Outcome{Kind: KindSuccess, Results: results}
}

// scrub removes configured secrets, flattens whitespace and truncates.
func (r *Relay) scrub(detail string) string {
	for _, s := range r.secrets {
		detail = strings.ReplaceAll(detail, s, redacted)
	}
	detail = strings.Join(strings.Fields(detail), " ")
	if runes := []rune(detail); len(runes) > maxDetailLength {
		detail = string(runes[:maxDetailLength]) + "..."
	}
	if detail == "" {
		detail = "unknown error"
	}
	return detail
}
