// Package search defines the provider abstraction used by the relay.
package search

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers transport failures, timeouts and non-2xx replies.
	ErrUnavailable = errors.New("search provider unavailable")

	// ErrMalformed covers provider replies that could not be decoded.
	ErrMalformed = errors.New("search provider returned a malformed response")
)

// Provider runs a single query against an external search API.
type Provider interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Response holds provider items in provider order.
type Response struct {
	Items []Item
}

// Item is a single provider result. Image is nil when the provider
// supplied no thumbnail.
type Item struct {
	Title string
	Link  string
	Image *string
}
