// Package resolve locates, for a small-government or community organization,
// its official homepage, the URL listing its job openings, and the applicant
// tracking system serving those listings. Every public entry point returns a
// usable result or an explicit unresolved value with provenance notes; none
// of them panic or propagate fetch errors.
package resolve

import (
	"context"
	"sort"

	"github.com/civicseek/orgjobs/internal/engine"
)

// Origin tags which discovery strategy produced a candidate.
type Origin string

const (
	OriginPathGuess      Origin = "path_guess"
	OriginLinkText       Origin = "link_text"
	OriginBrowserCrawl   Origin = "browser_crawl"
	OriginSitemap        Origin = "sitemap"
	OriginSearch         Origin = "search"
	OriginKnowledgeGraph Origin = "knowledge_graph"
	OriginPDF            Origin = "pdf"
)

// Candidate is a scored, provisional URL produced by one discovery strategy
// before final selection. Ephemeral: created and discarded within a single
// resolution call, never persisted.
type Candidate struct {
	URL        string
	Score      int
	Origin     Origin
	IsDocument bool
}

// sortCandidates orders by score descending; the sort is stable, so on equal
// scores the earlier-discovered candidate (earlier strategy) wins.
func sortCandidates(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Score > cands[j].Score
	})
}

// SourceType identifies what kind of jobs source a URL is.
type SourceType string

const (
	SourceWorkday      SourceType = "workday"
	SourceICIMS        SourceType = "icims"
	SourceNeoGov       SourceType = "neogov"
	SourceBambooHR     SourceType = "bamboohr"
	SourceApplicantPro SourceType = "applicantpro"
	SourceDayforce     SourceType = "dayforce"
	SourceADP          SourceType = "adp_workforce_now"
	SourceHTMLList     SourceType = "html_list"
	SourceDOM          SourceType = "dom"
	SourcePDF          SourceType = "pdf"
)

// Classification is the ATS classifier verdict for one organization and run.
// Confidence is a discrete constant per classification path, consumed
// downstream for eligibility gating and adapter dispatch.
type Classification struct {
	SourceType SourceType `json:"source_type"`
	AdapterID  string     `json:"adapter_id"`
	Confidence float64    `json:"confidence"`
}

// Resolution is the outcome of a homepage or jobs-URL research call. A zero
// URL means unresolved; Notes carry free-text provenance for the audit trail
// and are never re-parsed.
type Resolution struct {
	URL           string `json:"url,omitempty"`
	DiscoveredVia Origin `json:"discovered_via,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Found reports whether the resolution produced a URL.
func (r Resolution) Found() bool { return r.URL != "" }

// OrgType hints which research paths apply: some organization types have a
// reliable knowledge-graph presence, others only resolve through search.
type OrgType string

const (
	OrgFirstNation     OrgType = "first_nation"
	OrgMunicipality    OrgType = "municipality"
	OrgSchoolDistrict  OrgType = "school_district"
	OrgHealthAuthority OrgType = "health_authority"
	OrgLibrary         OrgType = "library"
	OrgOther           OrgType = "other"
)

// ParseOrgType maps a free-form type string onto a known OrgType.
func ParseOrgType(s string) OrgType {
	switch OrgType(s) {
	case OrgFirstNation, OrgMunicipality, OrgSchoolDistrict, OrgHealthAuthority, OrgLibrary:
		return OrgType(s)
	}
	return OrgOther
}

// Org is one organization to resolve.
type Org struct {
	Name     string
	Type     OrgType
	Homepage string // optional known homepage
}

// OrgResolution is the full per-organization answer.
type OrgResolution struct {
	Homepage       Resolution
	JobsURL        Resolution
	Classification Classification
	NeedsReview    bool
	ReviewReason   string
}

// Resolver carries the injected collaborators every strategy uses. The cache
// and breaker are the only shared mutable state across organizations; both
// are concurrency-safe by construction (idempotent writes, monotonic flag).
type Resolver struct {
	Fetch   engine.FetchFunc
	Render  engine.RenderFunc // nil = no rendering capability
	Cache   *engine.Cache
	Breaker *engine.Breaker

	// SERPFetch posts a query to the search endpoint and returns the raw
	// response body. Overridable in tests; nil falls back to the stealth
	// client configured on the engine.
	SERPFetch func(ctx context.Context, query string) ([]byte, error)
}

// New builds a Resolver on the engine's own fetcher and renderer.
func New(cache *engine.Cache, breaker *engine.Breaker) *Resolver {
	return &Resolver{
		Fetch:   engine.Fetch,
		Render:  engine.RendererIfEnabled(),
		Cache:   cache,
		Breaker: breaker,
	}
}

// firstHit composes cascade strategies: each is a pure function returning an
// optional candidate; the first present result wins. Keeps ordering and
// short-circuiting testable per strategy.
func firstHit(ctx context.Context, strategies ...func(context.Context) *Candidate) *Candidate {
	for _, s := range strategies {
		if ctx.Err() != nil {
			return nil
		}
		if c := s(ctx); c != nil {
			return c
		}
	}
	return nil
}
