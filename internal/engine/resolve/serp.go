package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/civicseek/orgjobs/internal/engine"
)

// ErrSearchDisabled is returned once the anti-bot breaker has tripped.
// Cached query results stay usable; only live search requests stop.
var ErrSearchDisabled = errors.New("search disabled by anti-bot breaker")

// SERP responses embed result URLs in two literal shapes. Both are scanned
// on the raw bytes because the surrounding markup changes more often than
// the embedded data does.
var (
	serpWebsiteURLRe = regexp.MustCompile(`website_url:"([^"]+)"`)
	serpTitleURLRe   = regexp.MustCompile(`"title":"[^"]*","url":"([^"]+)"`)
	serpAnchorRe     = regexp.MustCompile(`class="result__a"[^>]*href="([^"]+)"`)
)

// antiBotPhrases are literal challenge-page markers. Any one of them trips
// the breaker for the rest of the process.
var antiBotPhrases = []string{
	"detected unusual traffic",
	"unusual traffic from your",
	"verify you are a human",
	"complete the security check",
	"enable javascript and cookies to continue",
	"our systems have detected",
}

// serpBlockedHosts never count as candidates: directories, social networks,
// the search and knowledge-graph engines themselves, encyclopedia mirrors.
var serpBlockedHosts = []string{
	"duckduckgo.com", "google.com", "bing.com", "startpage.com",
	"wikipedia.org", "wikidata.org", "wikiwand.com", "fandom.com",
	"facebook.com", "twitter.com", "x.com", "instagram.com",
	"linkedin.com", "youtube.com", "pinterest.com", "tiktok.com",
	"yelp.com", "yellowpages.ca", "yellowpages.com", "411.ca",
	"canada411.ca", "opencorporates.com", "zoominfo.com", "glassdoor.com",
	"indeed.com", "tripadvisor.com",
}

func serpHostBlocked(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, b := range serpBlockedHosts {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

// searchURLs answers a search query with the de-duplicated candidate URLs
// extracted from the result page. Cache first, then the breaker gate, then a
// live request whose extraction is cached even when empty (an empty result
// set for a query is an answer, not a failure).
func (r *Resolver) searchURLs(ctx context.Context, query string) ([]string, error) {
	if r.Cache != nil {
		if urls, ok := r.Cache.GetURLs(ctx, query); ok {
			return urls, nil
		}
	}
	if r.Breaker != nil && r.Breaker.Open() {
		return nil, ErrSearchDisabled
	}

	engine.IncrSERPRequests()
	raw, err := r.serpFetch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	lower := strings.ToLower(string(raw))
	for _, phrase := range antiBotPhrases {
		if strings.Contains(lower, phrase) {
			if r.Breaker != nil {
				r.Breaker.Trip("challenge page: " + phrase)
			}
			return nil, ErrSearchDisabled
		}
	}

	urls := extractSERPURLs(raw)
	if r.Cache != nil {
		r.Cache.SetURLs(ctx, query, urls)
	}
	slog.Debug("search results", slog.String("query", query), slog.Int("count", len(urls)))
	return urls, nil
}

func (r *Resolver) serpFetch(ctx context.Context, query string) ([]byte, error) {
	if r.SERPFetch != nil {
		return r.SERPFetch(ctx, query)
	}
	return defaultSERPFetch(ctx, query)
}

// defaultSERPFetch posts the query to the configured HTML search endpoint
// with the stealth client's browser TLS fingerprint. The stealth client has
// no retry of its own, so transient failures go through engine.RetryDo.
func defaultSERPFetch(ctx context.Context, query string) ([]byte, error) {
	bc := engine.Cfg.SERPClient
	if bc == nil {
		return nil, errors.New("no search client configured")
	}

	form := fmt.Sprintf("q=%s&kl=wt-wt&df=", url.QueryEscape(query))
	headers := engine.ChromeHeaders()
	headers["referer"] = engine.Cfg.SERPEndpoint
	headers["content-type"] = "application/x-www-form-urlencoded"

	return engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]byte, error) {
		data, _, status, err := bc.Do("POST", engine.Cfg.SERPEndpoint, headers, strings.NewReader(form))
		if err != nil {
			return nil, err
		}
		if status != 200 {
			return nil, &engine.StatusError{Status: status}
		}
		return data, nil
	})
}

// extractSERPURLs pulls candidate URLs out of a raw result page, unwraps
// redirect wrappers, normalizes, drops block-listed hosts, de-duplicates.
func extractSERPURLs(raw []byte) []string {
	var found []string
	for _, re := range []*regexp.Regexp{serpWebsiteURLRe, serpTitleURLRe, serpAnchorRe} {
		for _, m := range re.FindAllSubmatch(raw, -1) {
			found = append(found, string(m[1]))
		}
	}

	urls := make([]string, 0, len(found))
	seen := map[string]bool{}
	for _, raw := range found {
		u := unwrapRedirect(unescapeSERP(raw))
		if u == "" {
			continue
		}
		u = engine.NormalizeURL(u)
		if serpHostBlocked(u) || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

func unescapeSERP(s string) string {
	s = strings.ReplaceAll(s, `\/`, "/")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}

// unwrapRedirect extracts the target from search-engine redirect wrappers
// such as //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
func unwrapRedirect(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
