package resolve

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/civicseek/orgjobs/internal/engine"
)

// vendorEntry pairs a URL signature with exactly one (sourceType, adapterID)
// pair. The strict pattern anchors to URL shape; the loose marker is a bare
// substring searched across resolved URLs and response bodies to catch
// embedded or iframed widgets reached via custom domains.
type vendorEntry struct {
	strict     *regexp.Regexp
	loose      string
	sourceType SourceType
	adapterID  string
}

// vendorTable is the known-ATS contract surface: seven mutually exclusive
// vendor identities. Order matters only for determinism; the signatures are
// disjoint. Shape-based catch-alls (html_list, dom, pdf) are produced by the
// classifier's heuristics, not this table.
var vendorTable = []vendorEntry{
	{
		strict:     regexp.MustCompile(`(?i)(^|\.)([a-z0-9-]+\.)*myworkdayjobs\.com(/|$)`),
		loose:      "myworkdayjobs.com",
		sourceType: SourceWorkday,
		adapterID:  "workday",
	},
	{
		strict:     regexp.MustCompile(`(?i)[a-z0-9-]+\.icims\.com(/jobs)?`),
		loose:      ".icims.com",
		sourceType: SourceICIMS,
		adapterID:  "icims",
	},
	{
		strict:     regexp.MustCompile(`(?i)(www\.)?governmentjobs\.com/(careers|jobs)`),
		loose:      "governmentjobs.com",
		sourceType: SourceNeoGov,
		adapterID:  "neogov",
	},
	{
		strict:     regexp.MustCompile(`(?i)[a-z0-9-]+\.bamboohr\.com(/careers|/jobs)?`),
		loose:      ".bamboohr.com",
		sourceType: SourceBambooHR,
		adapterID:  "bamboohr",
	},
	{
		strict:     regexp.MustCompile(`(?i)[a-z0-9-]+\.applicantpro\.com`),
		loose:      ".applicantpro.com",
		sourceType: SourceApplicantPro,
		adapterID:  "applicantpro",
	},
	{
		strict:     regexp.MustCompile(`(?i)(www\.)?dayforcehcm\.com/candidateportal`),
		loose:      "dayforcehcm.com",
		sourceType: SourceDayforce,
		adapterID:  "dayforce",
	},
	{
		strict:     regexp.MustCompile(`(?i)workforcenow\.adp\.com`),
		loose:      "workforcenow.adp.com",
		sourceType: SourceADP,
		adapterID:  "adp_workforce_now",
	},
}

// Discrete confidence constants; one per classification path.
const (
	confidenceVendor   = 1.0
	confidenceHTMLList = 0.8
	confidenceGeneric  = 0.5
)

func classUnknown() Classification {
	return Classification{SourceType: SourceDOM, AdapterID: "generic_dom", Confidence: confidenceGeneric}
}

func classPDF() Classification {
	return Classification{SourceType: SourcePDF, AdapterID: "pdf_document", Confidence: confidenceGeneric}
}

func classHTMLList() Classification {
	return Classification{SourceType: SourceHTMLList, AdapterID: "html_list", Confidence: confidenceHTMLList}
}

// MatchVendor applies the strict vendor signatures to a URL string.
func MatchVendor(rawURL string) (Classification, bool) {
	for _, v := range vendorTable {
		if v.strict.MatchString(rawURL) {
			return Classification{SourceType: v.sourceType, AdapterID: v.adapterID, Confidence: confidenceVendor}, true
		}
	}
	return Classification{}, false
}

// matchVendorLoose searches the same vendor identifiers without URL-shape
// anchoring, across arbitrary text (resolved URL + response body).
func matchVendorLoose(s string) (Classification, bool) {
	lower := strings.ToLower(s)
	for _, v := range vendorTable {
		if strings.Contains(lower, v.loose) {
			return Classification{SourceType: v.sourceType, AdapterID: v.adapterID, Confidence: confidenceVendor}, true
		}
	}
	return Classification{}, false
}

// IsVendorURL reports whether a URL matches any known ATS signature.
func IsVendorURL(rawURL string) bool {
	_, ok := MatchVendor(rawURL)
	return ok
}

// Classify identifies which known ATS platform (if any) serves a jobs page.
// Pure function of (URL, fetched/rendered content); it never returns an
// error: unreachable or malformed input terminates at the generic-unknown
// fallback. Steps are evaluated in strict order, first match wins.
func (r *Resolver) Classify(ctx context.Context, rawURL string) Classification {
	engine.IncrClassifyRequests()

	// 1. URL pattern match, zero fetches.
	if c, ok := MatchVendor(rawURL); ok {
		return c
	}

	// 2. Fetch with bounded retries and byte budget.
	res, ok := engineFetchMaybe(ctx, r.Fetch, rawURL, engine.FetchOptions{Retries: 1})
	if !ok {
		if r.Render != nil {
			if c, ok := r.classifyRendered(ctx, rawURL); ok {
				return c
			}
		}
		return classUnknown()
	}

	if c, ok := classifyFetched(res); ok {
		return c
	}

	// 6. Rendered retry when the bare fetch produced no usable signal.
	if r.Render != nil {
		if c, ok := r.classifyRendered(ctx, rawURL); ok {
			return c
		}
	}

	// 7. Terminal fallback.
	return classUnknown()
}

// classifyFetched runs steps 3–5 over a fetch result.
func classifyFetched(res *engine.FetchResult) (Classification, bool) {
	// 3. Resolved-URL pattern match (vendor platforms on custom domains
	// usually redirect to the vendor host).
	if c, ok := MatchVendor(res.FinalURL); ok {
		return c, true
	}

	// 4. Content marker match across resolved URL + body.
	if c, ok := matchVendorLoose(res.FinalURL + " " + string(res.Body)); ok {
		return c, true
	}

	// 5. Shape heuristics.
	return classifyShape(res.FinalURL, res.ContentType, res.Body)
}

// classifyShape checks page shape in order: pdf document, then a structured
// job list, then a generic careers page.
func classifyShape(finalURL, contentType string, body []byte) (Classification, bool) {
	if isPDF(finalURL, contentType) {
		return classPDF(), true
	}

	jobAnchors := engine.ExtractAnchors(body, finalURL, func(text, abs string) bool {
		return engine.KeywordScore(text, jobKeywords) > 0 || engine.KeywordScore(abs, jobKeywords) > 0
	}, maxAnchorsPerPage)

	text := strings.ToLower(engine.PageText(body))
	markerHits := 0
	for _, m := range postingMarkers {
		markerHits += strings.Count(text, m)
	}

	switch {
	case len(jobAnchors) >= 3:
		return classHTMLList(), true
	case len(jobAnchors) >= 2 && countDistinct(text, jobKeywords) >= 3:
		return classHTMLList(), true
	case markerHits >= 3:
		return classHTMLList(), true
	}

	if countDistinct(text, careerKeywords) >= minBodyCareerKeywords {
		return classUnknown(), true
	}

	return Classification{}, false
}

// classifyRendered repeats steps 3–5 against the rendered DOM and the set of
// sub-resource URLs the page requested while rendering.
func (r *Resolver) classifyRendered(ctx context.Context, rawURL string) (Classification, bool) {
	page, err := r.Render(ctx, rawURL)
	if err != nil {
		slog.Debug("classify: render failed", slog.String("url", rawURL), slog.Any("error", err))
		return Classification{}, false
	}

	if c, ok := MatchVendor(page.FinalURL); ok {
		return c, true
	}

	jobRequests := 0
	for _, req := range page.RequestURLs {
		if c, ok := matchVendorLoose(req); ok {
			return c, true
		}
		if engine.KeywordScore(req, jobKeywords) > 0 {
			jobRequests++
		}
	}
	if jobRequests >= minJobRequestURLs {
		return classHTMLList(), true
	}

	if c, ok := matchVendorLoose(page.FinalURL + " " + page.HTML); ok {
		return c, true
	}
	return classifyShape(page.FinalURL, "", []byte(page.HTML))
}

// isPDF detects document results by extension or declared content type.
func isPDF(rawURL, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// countDistinct returns how many list entries occur in the lowercased text.
func countDistinct(lowerText string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(lowerText, kw) {
			n++
		}
	}
	return n
}

// engineFetchMaybe adapts a FetchFunc into the sentinel style used by
// cascade steps.
func engineFetchMaybe(ctx context.Context, fetch engine.FetchFunc, rawURL string, opts engine.FetchOptions) (*engine.FetchResult, bool) {
	res, err := fetch(ctx, rawURL, opts)
	if err != nil {
		slog.Debug("fetch failed", slog.String("url", rawURL), slog.Any("error", err))
		return nil, false
	}
	return res, true
}
