package resolve

import (
	"regexp"
	"strings"
)

// Sitemaps in the wild are frequently malformed, so <loc> extraction is
// regex-based rather than a strict XML decode. CDATA wrappers and entity
// escaping of ampersands are the common cases worth handling.
var sitemapLocRe = regexp.MustCompile(`(?is)<loc>\s*(.*?)\s*</loc>`)

func extractSitemapLocs(body []byte) []string {
	matches := sitemapLocRe.FindAllSubmatch(body, -1)
	locs := make([]string, 0, len(matches))
	seen := map[string]bool{}
	for _, m := range matches {
		loc := strings.TrimSpace(string(m[1]))
		loc = strings.TrimPrefix(loc, "<![CDATA[")
		loc = strings.TrimSuffix(loc, "]]>")
		loc = strings.ReplaceAll(loc, "&amp;", "&")
		if loc == "" || !strings.HasPrefix(loc, "http") || seen[loc] {
			continue
		}
		seen[loc] = true
		locs = append(locs, loc)
	}
	return locs
}
