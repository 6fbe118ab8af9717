// Package google implements search.Provider on top of the Google Custom
// Search JSON API.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/namelens/searchrelay/internal/observability"
	"github.com/namelens/searchrelay/internal/search"
)

// DefaultBaseURL is the Custom Search JSON API host.
const DefaultBaseURL = "https://customsearch.googleapis.com/"

const (
	defaultTimeout  = 10 * time.Second
	defaultMaxItems = 3
)

// Config holds the credentials and transport settings for the client.
type Config struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration

	// MaxItems caps how many leading items are shaped and returned; zero
	// means three. Items past the cap are never inspected.
	MaxItems int

	// HTTPClient overrides the default timeout-bound client.
	HTTPClient *http.Client
}

// Client queries Custom Search with the configured key and engine ID.
type Client struct {
	service  *customsearch.Service
	apiKey   string
	engineID string
	maxItems int
}

// New builds a client. The caller keeps ownership of cfg.HTTPClient.
func New(ctx context.Context, cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid search base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	// The key travels as a per-call query parameter; a custom HTTP client
	// bypasses option.WithAPIKey.
	service, err := customsearch.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}

	maxItems := cfg.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}

	return &Client{
		service:  service,
		apiKey:   cfg.APIKey,
		engineID: cfg.EngineID,
		maxItems: maxItems,
	}, nil
}

// Search issues one GET with key, cx and q. The first maxItems items are
// returned in provider order.
func (c *Client) Search(ctx context.Context, query string) (*search.Response, error) {
	if c == nil || c.service == nil {
		return nil, errors.New("google search client is not configured")
	}

	result, err := c.service.Cse.List().
		Cx(c.engineID).
		Q(query).
		Context(ctx).
		Do(googleapi.QueryParameter("key", c.apiKey))
	if err != nil {
		return nil, classify(err)
	}

	items := result.Items
	if len(items) > c.maxItems {
		items = items[:c.maxItems]
	}

	resp := &search.Response{Items: make([]search.Item, 0, len(items))}
	for i, item := range items {
		if item == nil {
			continue
		}
		image, err := cseImage(item.Pagemap)
		if err != nil {
			if logger := observability.Logger(); logger != nil {
				logger.Debug("Search item has an unreadable pagemap",
					zap.Int("item", i),
					zap.Error(err))
			}
			return nil, fmt.Errorf("%w: item %d: pagemap.cse_image is not a list of objects", search.ErrMalformed, i)
		}
		resp.Items = append(resp.Items, search.Item{
			Title: item.Title,
			Link:  item.Link,
			Image: image,
		})
	}

	return resp, nil
}

// classify maps client errors onto the search taxonomy. Anything that is
// not a transport or status failure happened while decoding the body.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d", search.ErrUnavailable, apiErr.Code)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", search.ErrUnavailable, err)
	}

	return fmt.Errorf("%w: %v", search.ErrMalformed, err)
}

type pagemap struct {
	CseImage []struct {
		Src *string `json:"src"`
	} `json:"cse_image"`
}

// cseImage extracts pagemap.cse_image[0].src; a missing level yields nil.
func cseImage(raw googleapi.RawMessage) (*string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var pm pagemap
	if err := json.Unmarshal(raw, &pm); err != nil {
		return nil, err
	}
	if len(pm.CseImage) == 0 {
		return nil, nil
	}
	return pm.CseImage[0].Src, nil
}

var _ search.Provider = (*Client)(nil)
