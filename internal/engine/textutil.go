package engine

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go-kit/strutil"
)

// User-Agent string used where a stable identity is preferable to rotation.
const UserAgentBot = "CivicSeek/1.0"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)
var wsRe = regexp.MustCompile(`\s+`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// NormalizeWhitespace collapses runs of whitespace and trims.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// Truncate returns the first n bytes of s.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// PageText converts an HTML body to scoreable plain text. Conversion ladder:
// html-to-markdown for structure-preserving text, goquery body text when that
// fails, regex tag stripping as the last rung. Keyword heuristics only need
// substrings, so any rung is acceptable.
func PageText(html []byte) string {
	if md, err := htmltomarkdown.ConvertString(string(html)); err == nil && strings.TrimSpace(md) != "" {
		return NormalizeWhitespace(md)
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html))); err == nil {
		doc.Find("script, style, noscript").Remove()
		if text := NormalizeWhitespace(doc.Find("body").Text()); text != "" {
			return text
		}
	}

	return NormalizeWhitespace(htmlTagRe.ReplaceAllString(string(html), " "))
}

// PageTitle extracts the document title, falling back to og:title.
func PageTitle(html []byte) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return ""
	}
	title := NormalizeWhitespace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
		title = NormalizeWhitespace(title)
	}
	return title
}
