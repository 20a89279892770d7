package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicseek/orgjobs/internal/engine"
)

const careersBody = `<html><body>
	<h1>Careers</h1>
	<p>Employment opportunities with the Town. Apply today.</p>
</body></html>`

func TestDiscoverJobsURLPathProbe(t *testing.T) {
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca/careers": {body: careersBody},
	})
	r := newTestResolver(f)

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://example-town.ca/careers", res.URL)
	assert.Equal(t, OriginPathGuess, res.DiscoveredVia)
	assert.Contains(t, res.Notes, "score 80")
}

func TestDiscoverJobsURLShortCircuitsOnVendorProbe(t *testing.T) {
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca/careers": {
			finalURL: "https://exampletown.wd3.myworkdayjobs.com/External",
			body:     "<html><body>redirecting</body></html>",
		},
	})
	r := newTestResolver(f)
	renderCalls := 0
	r.Render = func(ctx context.Context, rawURL string) (*engine.RenderedPage, error) {
		renderCalls++
		return nil, context.Canceled
	}

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://exampletown.wd3.myworkdayjobs.com/External", res.URL)
	assert.Equal(t, OriginPathGuess, res.DiscoveredVia)

	// First probe path hit; later strategies must not run.
	assert.Equal(t, 1, f.totalCalls())
	assert.Zero(t, f.callCount("https://example-town.ca"))
	assert.Zero(t, f.callCount("https://example-town.ca/sitemap.xml"))
	assert.Zero(t, renderCalls)
}

func TestDiscoverJobsURLIdempotent(t *testing.T) {
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca/careers": {body: careersBody},
	})
	r := newTestResolver(f)

	first := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")
	second := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, first.DiscoveredVia, second.DiscoveredVia)
}

func TestDiscoverJobsURLLinkText(t *testing.T) {
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca": {
			body: `<html><body>
				<a href="/town-hall/work-with-us">Employment Opportunities</a>
				<a href="/parks">Parks and Recreation</a>
			</body></html>`,
		},
	})
	r := newTestResolver(f)

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://example-town.ca/town-hall/work-with-us", res.URL)
	assert.Equal(t, OriginLinkText, res.DiscoveredVia)
}

func TestDiscoverJobsURLBrowserCrawlVendorRequest(t *testing.T) {
	// JS-only homepage: nothing for the plain strategies, but the rendered
	// page loads its listings widget straight from the ATS host.
	shell := `<html><body><div id="root"></div></body></html>`
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca": {body: shell},
	})
	r := newTestResolver(f)
	rd := &fakeRenderer{pages: map[string]*engine.RenderedPage{
		"https://example-town.ca": {
			HTML: shell,
			RequestURLs: []string{
				"https://example-town.ca/static/app.js",
				"https://exampletown.wd3.myworkdayjobs.com/wday/cxs/exampletown/External/jobs",
			},
		},
	}}
	r.Render = rd.Render

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://exampletown.wd3.myworkdayjobs.com/wday/cxs/exampletown/External/jobs", res.URL)
	assert.Equal(t, OriginBrowserCrawl, res.DiscoveredVia)
	assert.Contains(t, res.Notes, "score 100")
	assert.Equal(t, 1, rd.calls())
}

func TestDiscoverJobsURLBrowserCrawlRenderedAnchor(t *testing.T) {
	shell := `<html><body><div id="root"></div></body></html>`
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca": {body: shell},
	})
	r := newTestResolver(f)
	rd := &fakeRenderer{pages: map[string]*engine.RenderedPage{
		"https://example-town.ca": {
			HTML: `<html><body>
				<a href="/opportunities/current">Current Job Postings</a>
				<a href="/parks">Parks</a>
			</body></html>`,
		},
	}}
	r.Render = rd.Render

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://example-town.ca/opportunities/current", res.URL)
	assert.Equal(t, OriginBrowserCrawl, res.DiscoveredVia)
}

func TestDiscoverJobsURLSitemap(t *testing.T) {
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca": {
			body: "<html><body><a href=\"/parks\">Parks</a></body></html>",
		},
		"https://example-town.ca/sitemap.xml": {
			contentType: "application/xml",
			body: `<?xml version="1.0"?><urlset>
				<url><loc>https://example-town.ca/parks</loc></url>
				<url><loc>https://example-town.ca/town-hall/careers</loc></url>
			</urlset>`,
		},
	})
	r := newTestResolver(f)

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://example-town.ca/town-hall/careers", res.URL)
	assert.Equal(t, OriginSitemap, res.DiscoveredVia)
}

func TestDiscoverJobsURLPDFLastResort(t *testing.T) {
	f := newFakeFetcher(map[string]fakePage{
		"https://example-town.ca": {
			body: `<html><body><a href="/docs/job-postings.pdf">Current Job Postings</a></body></html>`,
		},
	})
	r := newTestResolver(f)

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	require.True(t, res.Found())
	assert.Equal(t, "https://example-town.ca/docs/job-postings.pdf", res.URL)
	assert.Equal(t, OriginPDF, res.DiscoveredVia)
}

func TestDiscoverJobsURLManualReview(t *testing.T) {
	f := newFakeFetcher(nil)
	r := newTestResolver(f)

	res := r.DiscoverJobsURL(context.Background(), "https://example-town.ca")

	assert.False(t, res.Found())
	assert.Contains(t, res.Notes, "manual review")
}

func TestDiscoverJobsURLFastSkipsDeepStrategies(t *testing.T) {
	f := newFakeFetcher(nil)
	r := newTestResolver(f)

	res := r.DiscoverJobsURLFast(context.Background(), "https://example-town.ca")

	assert.False(t, res.Found())
	assert.Zero(t, f.callCount("https://example-town.ca/sitemap.xml"))
	// Only the trimmed probe list plus the homepage itself.
	assert.Equal(t, fastProbePaths+1, f.totalCalls())
}
