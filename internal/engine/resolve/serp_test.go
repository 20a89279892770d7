package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSERPURLs(t *testing.T) {
	raw := []byte(`
		website_url:"https://example-town.ca/"
		{"title":"Example Town","url":"https://example-town.ca/?utm_source=serp"}
		{"title":"Wiki","url":"https://en.wikipedia.org/wiki/Example_Town"}
		<a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample-fn.ca%2F&rut=abc">Example FN</a>
		website_url:"https:\/\/www.facebook.com\/exampletown"
	`)

	urls := extractSERPURLs(raw)

	// Tracking params stripped, duplicates collapsed, blocked hosts dropped.
	assert.Equal(t, []string{"https://example-town.ca", "https://example-fn.ca"}, urls)
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct{ in, want string }{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=abc", "https://example.com"},
		{"https://example.com/page", "https://example.com/page"},
		{"/relative/path", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unwrapRedirect(tt.in), tt.in)
	}
}

func TestSearchURLsCachesResults(t *testing.T) {
	f := newFakeFetcher(nil)
	r := newTestResolver(f)
	serp := &countingSERP{raw: []byte(`website_url:"https://example-town.ca/"`)}
	r.SERPFetch = serp.fetch

	first, err := r.searchURLs(context.Background(), "example town official website")
	require.NoError(t, err)
	second, err := r.searchURLs(context.Background(), "Example Town  official website")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, serp.calls(), "normalized-equivalent query must hit the cache")
}

func TestSearchURLsEmptyResultIsCached(t *testing.T) {
	f := newFakeFetcher(nil)
	r := newTestResolver(f)
	serp := &countingSERP{raw: []byte("<html><body>no results</body></html>")}
	r.SERPFetch = serp.fetch

	urls, err := r.searchURLs(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Empty(t, urls)

	_, err = r.searchURLs(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Equal(t, 1, serp.calls())
}

func TestBreakerTripIsMonotonic(t *testing.T) {
	f := newFakeFetcher(nil)
	r := newTestResolver(f)

	// Prime the cache before the challenge page appears.
	r.Cache.SetURLs(context.Background(), "cached query", []string{"https://example-town.ca"})

	serp := &countingSERP{raw: []byte("<html><body>Please verify you are a human to continue.</body></html>")}
	r.SERPFetch = serp.fetch

	_, err := r.searchURLs(context.Background(), "example town jobs")
	require.ErrorIs(t, err, ErrSearchDisabled)
	assert.True(t, r.Breaker.Open())

	// No further live requests, regardless of query.
	for _, q := range []string{"another org careers", "third org website", "example town jobs"} {
		_, err := r.searchURLs(context.Background(), q)
		assert.ErrorIs(t, err, ErrSearchDisabled)
	}
	assert.Equal(t, 1, serp.calls())

	// Cached results stay usable after the trip.
	urls, err := r.searchURLs(context.Background(), "cached query")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example-town.ca"}, urls)
}

func TestSERPHostBlocked(t *testing.T) {
	assert.True(t, serpHostBlocked("https://www.facebook.com/exampletown"))
	assert.True(t, serpHostBlocked("https://en.wikipedia.org/wiki/Example"))
	assert.False(t, serpHostBlocked("https://example-town.ca"))
}
