package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/civicseek/orgjobs/internal/engine"
)

// cascadeOptions distinguish the full cascade from the reduced-cost fast
// mode used when latency budgets are tight.
type cascadeOptions struct {
	probePaths   []string
	contextPages int
	retries      int
	maxBytes     int64
	useBrowser   bool
	useSitemap   bool
}

func fullCascade() cascadeOptions {
	return cascadeOptions{
		probePaths:   careerPaths,
		contextPages: maxContextPages,
		retries:      1,
		maxBytes:     256 * 1024,
		useBrowser:   true,
		useSitemap:   true,
	}
}

func fastCascade() cascadeOptions {
	return cascadeOptions{
		probePaths:   careerPaths[:fastProbePaths],
		contextPages: 0,
		retries:      0,
		maxBytes:     64 * 1024,
		useBrowser:   false,
		useSitemap:   false,
	}
}

// DiscoverJobsURL runs the ordered jobs-URL discovery cascade against a known
// homepage: path probing, link-text crawling, browser-assisted crawling,
// sitemap scanning. First strong hit wins; PDF candidates are held as the
// fallback of last resort. Never returns an error; an exhausted cascade is
// a normal terminal state flagged for manual review.
func (r *Resolver) DiscoverJobsURL(ctx context.Context, homepage string) Resolution {
	return r.discover(ctx, homepage, fullCascade())
}

// DiscoverJobsURLFast is the reduced-cost mode: a trimmed path probe and a
// trimmed link-text crawl with zero retries and smaller byte caps, skipping
// the browser and sitemap strategies entirely.
func (r *Resolver) DiscoverJobsURLFast(ctx context.Context, homepage string) Resolution {
	return r.discover(ctx, homepage, fastCascade())
}

func (r *Resolver) discover(ctx context.Context, homepage string, opts cascadeOptions) Resolution {
	engine.IncrCascadeRuns()

	origin := engine.Origin(homepage)
	if origin == "" {
		engine.IncrManualReviewFlags()
		return Resolution{Notes: fmt.Sprintf("invalid homepage %q; needs manual review", homepage)}
	}

	var heldPDFs []Candidate

	strategies := []func(context.Context) *Candidate{
		func(ctx context.Context) *Candidate { return r.probePaths(ctx, origin, opts, &heldPDFs) },
		func(ctx context.Context) *Candidate { return r.crawlLinkText(ctx, homepage, opts, &heldPDFs) },
	}
	if opts.useBrowser && r.Render != nil {
		strategies = append(strategies, func(ctx context.Context) *Candidate {
			return r.crawlBrowser(ctx, homepage)
		})
	}
	if opts.useSitemap {
		strategies = append(strategies, func(ctx context.Context) *Candidate {
			return r.scanSitemap(ctx, origin, opts)
		})
	}

	if c := firstHit(ctx, strategies...); c != nil {
		return Resolution{
			URL:           c.URL,
			DiscoveredVia: c.Origin,
			Notes:         fmt.Sprintf("jobs page via %s (score %d)", c.Origin, c.Score),
		}
	}

	// No non-PDF strategy produced anything; fall back to the best held PDF.
	if len(heldPDFs) > 0 {
		sortCandidates(heldPDFs)
		best := heldPDFs[0]
		return Resolution{
			URL:           best.URL,
			DiscoveredVia: OriginPDF,
			Notes:         fmt.Sprintf("only a PDF job listing was found (held from %s)", best.Origin),
		}
	}

	engine.IncrManualReviewFlags()
	return Resolution{Notes: "no jobs page found by path probe, link crawl, browser crawl, or sitemap; needs manual review"}
}

// probePaths constructs candidate URLs from conventional career-page paths.
// A known-ATS redirect is accepted immediately; a PDF response is remembered
// at low priority; a keyword-bearing page is accepted at the keyword score.
func (r *Resolver) probePaths(ctx context.Context, origin string, opts cascadeOptions, heldPDFs *[]Candidate) *Candidate {
	fetchOpts := engine.FetchOptions{Retries: opts.retries, MaxBytes: opts.maxBytes}

	for _, p := range opts.probePaths {
		probeURL := origin + p
		res, ok := engineFetchMaybe(ctx, r.Fetch, probeURL, fetchOpts)
		if !ok {
			continue
		}

		if IsVendorURL(res.FinalURL) {
			return &Candidate{URL: res.FinalURL, Score: scoreVendorMatch, Origin: OriginPathGuess}
		}

		if isPDF(res.FinalURL, res.ContentType) {
			*heldPDFs = append(*heldPDFs, Candidate{URL: res.FinalURL, Score: scorePDFHeld, Origin: OriginPathGuess, IsDocument: true})
			continue
		}

		text := strings.ToLower(engine.PageText(res.Body))
		if countDistinct(text, careerKeywords) >= minBodyCareerKeywords {
			return &Candidate{URL: res.FinalURL, Score: scoreKeywordPage, Origin: OriginPathGuess}
		}
	}
	return nil
}

// crawlLinkText fetches the homepage plus up to contextPages same-host
// secondary pages (about/contact/administration-style navigation) and scores
// every anchor by keyword-weighted link text, with a large fixed bonus when
// the target itself matches a known ATS pattern.
func (r *Resolver) crawlLinkText(ctx context.Context, homepage string, opts cascadeOptions, heldPDFs *[]Candidate) *Candidate {
	fetchOpts := engine.FetchOptions{Retries: opts.retries, MaxBytes: opts.maxBytes}

	res, ok := engineFetchMaybe(ctx, r.Fetch, homepage, fetchOpts)
	if !ok {
		return nil
	}

	pages := [][2]string{{res.FinalURL, string(res.Body)}} // (base, html)

	if opts.contextPages > 0 {
		ctxLinks := engine.ExtractAnchors(res.Body, res.FinalURL, func(text, abs string) bool {
			return engine.SameHost(abs, homepage) && engine.KeywordScore(text, contextLinkKeywords) > 0
		}, maxAnchorsPerPage)
		for i := 0; i < len(ctxLinks) && i < opts.contextPages; i++ {
			sub, ok := engineFetchMaybe(ctx, r.Fetch, ctxLinks[i].URL, fetchOpts)
			if !ok {
				continue
			}
			pages = append(pages, [2]string{sub.FinalURL, string(sub.Body)})
		}
	}

	var best *Candidate
	for _, pg := range pages {
		base, html := pg[0], pg[1]
		anchors := engine.ExtractAnchors([]byte(html), base, nil, maxAnchorsPerPage)
		for _, a := range anchors {
			c := scoreJobAnchor(a, OriginLinkText)
			if c == nil {
				continue
			}
			if c.IsDocument {
				*heldPDFs = append(*heldPDFs, *c)
				continue
			}
			if best == nil || c.Score > best.Score {
				best = c
			}
		}
	}
	return best
}

// scoreJobAnchor turns one anchor into a candidate, or nil when it carries no
// job signal at all.
func scoreJobAnchor(a engine.Anchor, origin Origin) *Candidate {
	score := engine.KeywordScore(a.Text, jobKeywords) + engine.KeywordScore(urlPath(a.URL), jobKeywords)
	if IsVendorURL(a.URL) {
		score += scoreVendorMatch
	}
	if score == 0 {
		return nil
	}
	if strings.HasSuffix(strings.ToLower(urlPath(a.URL)), ".pdf") {
		return &Candidate{URL: a.URL, Score: scorePDFHeld, Origin: origin, IsDocument: true}
	}
	return &Candidate{URL: a.URL, Score: score, Origin: origin}
}

func urlPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Path
}

// crawlBrowser is a breadth-first rendered traversal bounded to
// maxBrowserPages visited pages. Anchors are scored exactly like the
// link-text crawl; every sub-resource request the page issues is checked
// against the ATS table and treated as a maximal-score candidate on match.
func (r *Resolver) crawlBrowser(ctx context.Context, homepage string) *Candidate {
	queue := []string{homepage}
	visited := map[string]bool{}
	var best *Candidate

	for len(queue) > 0 && len(visited) < maxBrowserPages {
		next := queue[0]
		queue = queue[1:]
		if visited[engine.NormalizeURL(next)] {
			continue
		}
		visited[engine.NormalizeURL(next)] = true

		page, err := r.Render(ctx, next)
		if err != nil {
			slog.Debug("browser crawl: render failed", slog.String("url", next), slog.Any("error", err))
			continue
		}

		for _, req := range page.RequestURLs {
			if IsVendorURL(req) {
				return &Candidate{URL: req, Score: scoreVendorMatch, Origin: OriginBrowserCrawl}
			}
		}

		anchors := engine.ExtractAnchors([]byte(page.HTML), page.FinalURL, nil, maxAnchorsPerPage)
		enqueued := 0
		for _, a := range anchors {
			if c := scoreJobAnchor(a, OriginBrowserCrawl); c != nil && !c.IsDocument {
				if best == nil || c.Score > best.Score {
					best = c
				}
			}
			// Likely-context pages widen the traversal the same way the
			// plain link crawl picks its secondary pages.
			if enqueued < maxContextPages &&
				engine.SameHost(a.URL, homepage) &&
				!visited[engine.NormalizeURL(a.URL)] &&
				engine.KeywordScore(a.Text, contextLinkKeywords) > 0 {
				queue = append(queue, a.URL)
				enqueued++
			}
		}
	}
	return best
}

// scanSitemap fetches /sitemap.xml at the origin, filters <loc> entries to
// career-flavored URLs, and scores keyword presence with larger bonuses for
// explicit career/jobs path segments and ATS-table matches.
func (r *Resolver) scanSitemap(ctx context.Context, origin string, opts cascadeOptions) *Candidate {
	res, ok := engineFetchMaybe(ctx, r.Fetch, origin+"/sitemap.xml", engine.FetchOptions{Retries: opts.retries, MaxBytes: opts.maxBytes})
	if !ok {
		return nil
	}

	var best *Candidate
	for _, loc := range extractSitemapLocs(res.Body) {
		score := engine.KeywordScore(loc, jobKeywords)
		if score == 0 {
			continue
		}
		lower := strings.ToLower(loc)
		if strings.Contains(lower, "/career") || strings.Contains(lower, "/jobs") {
			score += 5
		}
		if IsVendorURL(loc) {
			score += scoreVendorMatch
		}
		if best == nil || score > best.Score {
			best = &Candidate{URL: engine.NormalizeURL(loc), Score: score, Origin: OriginSitemap}
		}
	}
	return best
}
