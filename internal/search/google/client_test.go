package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/searchrelay/internal/search"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	client, err := New(context.Background(), Config{
		APIKey:     "test-key",
		EngineID:   "test-cx",
		BaseURL:    server.URL,
		MaxItems:   10,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestClientSendsKeyEngineAndQuery(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		got = map[string]string{"key": q.Get("key"), "cx": q.Get("cx"), "q": q.Get("q")}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).Search(context.Background(), "golang relay")
	require.NoError(t, err)
	require.Empty(t, resp.Items)
	require.Equal(t, map[string]string{"key": "test-key", "cx": "test-cx", "q": "golang relay"}, got)
}

func TestClientPreservesOrderAndExtractsImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"A","link":"http://a","pagemap":{"cse_image":[{"src":"http://a/img.png"}]}},
			{"title":"B","link":"http://b","pagemap":{"cse_image":[]}},
			{"title":"C","link":"http://c","pagemap":{"metatags":[{"og:title":"C"}]}},
			{"title":"D","link":"http://d"}
		]}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, resp.Items, 4)

	assert.Equal(t, "A", resp.Items[0].Title)
	assert.Equal(t, "http://a", resp.Items[0].Link)
	require.NotNil(t, resp.Items[0].Image)
	assert.Equal(t, "http://a/img.png", *resp.Items[0].Image)

	for _, item := range resp.Items[1:] {
		assert.Nil(t, item.Image, "item %s should have no image", item.Title)
	}
	assert.Equal(t, []string{"B", "C", "D"}, []string{resp.Items[1].Title, resp.Items[2].Title, resp.Items[3].Title})
}

func TestClientMissingItemsIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"customsearch#search"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).Search(context.Background(), "q")
	require.NoError(t, err)
	require.Empty(t, resp.Items)
}

func TestClientNon2xxIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Search(context.Background(), "q")
	require.ErrorIs(t, err, search.ErrUnavailable)
}

func TestClientConnectionFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	server.Close()

	_, err := client.Search(context.Background(), "q")
	require.ErrorIs(t, err, search.ErrUnavailable)
}

func TestClientTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := New(context.Background(), Config{
		APIKey:     "k",
		EngineID:   "cx",
		BaseURL:    server.URL,
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "q")
	require.ErrorIs(t, err, search.ErrUnavailable)
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"title": 42`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Search(context.Background(), "q")
	require.ErrorIs(t, err, search.ErrMalformed)
	require.NotErrorIs(t, err, search.ErrUnavailable)
}

func TestClientMalformedPagemap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"title":"A","link":"http://a","pagemap":{"cse_image":"nope"}}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).Search(context.Background(), "q")
	require.ErrorIs(t, err, search.ErrMalformed)
	assert.Equal(t, "search provider returned a malformed response: item 0: pagemap.cse_image is not a list of objects", err.Error())
	assert.NotContains(t, err.Error(), "struct")
}

func TestClientIgnoresItemsPastLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"A","link":"http://a"},
			{"title":"B","link":"http://b"},
			{"title":"C","link":"http://c"},
			{"title":"D","link":"http://d","pagemap":{"cse_image":"nope"}}
		]}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), Config{
		APIKey:     "k",
		EngineID:   "cx",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)

	resp, err := client.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{resp.Items[0].Title, resp.Items[1].Title, resp.Items[2].Title})
}
