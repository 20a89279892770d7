package engine

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Anchor is one scored-candidate source: a link's absolute target plus its
// whitespace-normalized visible text.
type Anchor struct {
	URL  string
	Text string
}

// trackingParams are well-known analytics query parameters stripped during
// URL normalization so two links to the same page de-duplicate.
var trackingParams = map[string]bool{
	"gclid":   true,
	"fbclid":  true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
}

// NormalizeURL strips the fragment, removes tracking query parameters, and
// trims a trailing slash so URL-equality checks and cache keys behave.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""

	q := u.Query()
	changed := false
	for k := range q {
		if trackingParams[k] || strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
			changed = true
		}
	}
	if changed || len(q) == 0 {
		u.RawQuery = q.Encode()
	}

	if u.Path != "/" {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}
	return u.String()
}

// ExtractAnchors pulls anchors out of an HTML document, resolving hrefs
// against base, normalizing targets, and applying keep over the visible text
// and absolute URL. Returns at most max anchors in document order; pages with
// thousands of links cost the same as pages with fifty.
func ExtractAnchors(html []byte, base string, keep func(text, absURL string) bool, max int) []Anchor {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var out []Anchor
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := NormalizeURL(baseURL.ResolveReference(ref).String())
		if !strings.HasPrefix(abs, "http") {
			return true
		}

		text := NormalizeWhitespace(s.Text())
		if text == "" {
			// img-only anchors still count when alt/title text exists
			if alt, ok := s.Find("img").Attr("alt"); ok {
				text = NormalizeWhitespace(alt)
			}
		}

		if keep != nil && !keep(text, abs) {
			return true
		}
		out = append(out, Anchor{URL: abs, Text: text})
		return max <= 0 || len(out) < max
	})
	return out
}

// KeywordScore counts how many keywords occur as substrings of the lowercased
// text, each hit weighted by the keyword's own word count so multi-word
// keywords ("employment opportunities") outrank incidental single-word hits.
func KeywordScore(text string, keywords []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += len(strings.Fields(kw))
		}
	}
	return score
}

// SameHost reports whether two URLs share a hostname, ignoring a leading www.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	trim := func(h string) string { return strings.TrimPrefix(strings.ToLower(h), "www.") }
	return trim(ua.Hostname()) != "" && trim(ua.Hostname()) == trim(ub.Hostname())
}

// Origin reduces a URL to scheme://host.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
