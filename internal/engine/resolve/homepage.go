package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/civicseek/orgjobs/internal/engine"
)

// Vocabulary that separates the site kinds this engine hunts from the sites
// that merely mention them.
var (
	govSiteVocab = []string{
		"council", "mayor", "bylaw", "municipal", "town hall",
		"public works", "reeve", "permits", "agendas",
	}
	indigenousSiteVocab = []string{
		"first nation", "band office", "chief and council",
		"treaty", "membership", "elders", "our community",
	}
	wrongSiteVocab = []string{
		"breaking news", "wiki", "encyclopedia", "travel guide",
		"tourism", "hotel", "casino", "betting", "real estate listings",
	}
)

const (
	officialLanguageBonus = 2
	domainVocabBonus      = 2
	regionHintBonus       = 2
	wrongSitePenalty      = 3
	kgSimilarityWeight    = 3 // similarity in [0,1] scaled into the score
	maxCandidatesPerQuery = 5
)

// ResearchHomepage locates an organization's official homepage when none is
// known: the knowledge graph first for org types it covers well, then search
// queries scored by distinctive-token presence. Returns an unresolved value
// with notes rather than an error when nothing clears the acceptance floor.
func (r *Resolver) ResearchHomepage(ctx context.Context, org Org) Resolution {
	tokens := NameTokens(org.Name)
	if len(tokens) == 0 {
		return Resolution{Notes: fmt.Sprintf("name %q has no distinctive tokens; research refused", org.Name)}
	}

	if kgEligible(org.Type) {
		if res := r.homepageFromKnowledgeGraph(ctx, org, tokens); res.Found() {
			return res
		}
	}
	return r.homepageFromSearch(ctx, org, tokens)
}

// homepageFromKnowledgeGraph scores every official-website claim of every
// plausible entity and accepts immediately when the best clears the
// knowledge-graph acceptance threshold.
func (r *Resolver) homepageFromKnowledgeGraph(ctx context.Context, org Org, tokens []string) Resolution {
	ents, err := r.kgSearchEntities(ctx, org.Name, org.Type)
	if err != nil {
		slog.Debug("knowledge graph lookup failed", slog.String("org", org.Name), slog.Any("error", err))
		return Resolution{}
	}

	bestScore := 0
	var best Resolution
	for _, ent := range ents {
		sites, err := r.kgOfficialWebsites(ctx, ent.ID)
		if err != nil {
			slog.Debug("knowledge graph claims failed", slog.String("entity", ent.ID), slog.Any("error", err))
			continue
		}
		for _, site := range sites {
			score := r.scoreOrgPage(ctx, site, tokens, org.Type)
			if score == 0 {
				continue
			}
			score += int(math.Round(ent.Similarity * kgSimilarityWeight))
			if kgRegionHint(ent.Description) {
				score += regionHintBonus
			}
			if score > bestScore {
				bestScore = score
				best = Resolution{
					URL:           engine.NormalizeURL(site),
					DiscoveredVia: OriginKnowledgeGraph,
					Notes:         fmt.Sprintf("knowledge graph entity %s (%q, similarity %.2f, score %d)", ent.ID, ent.Label, ent.Similarity, score),
				}
			}
		}
	}
	if bestScore >= kgAcceptScore {
		return best
	}
	return Resolution{}
}

func homepageQueries(org Org) []string {
	queries := []string{org.Name + " official website"}
	if q := orgTypeQualifier(org.Type); q != "" && !strings.Contains(strings.ToLower(org.Name), q) {
		queries = append(queries, org.Name+" "+q+" official website")
	}
	return append(queries, org.Name+" website")
}

// homepageFromSearch tries the query templates in order, scoring each
// candidate origin, stopping early on a clearly-right page and otherwise
// keeping the overall best above the acceptance floor.
func (r *Resolver) homepageFromSearch(ctx context.Context, org Org, tokens []string) Resolution {
	bestScore := 0
	var best Resolution

	for _, query := range homepageQueries(org) {
		urls, err := r.searchURLs(ctx, query)
		if err != nil {
			if errors.Is(err, ErrSearchDisabled) {
				break
			}
			slog.Debug("homepage search failed", slog.String("query", query), slog.Any("error", err))
			continue
		}

		seen := map[string]bool{}
		tried := 0
		for _, u := range urls {
			origin := engine.Origin(u)
			if origin == "" || seen[origin] {
				continue
			}
			seen[origin] = true
			if tried++; tried > maxCandidatesPerQuery {
				break
			}

			score := r.scoreOrgPage(ctx, origin, tokens, org.Type)
			if score > bestScore {
				bestScore = score
				best = Resolution{
					URL:           origin,
					DiscoveredVia: OriginSearch,
					Notes:         fmt.Sprintf("search %q (score %d)", query, score),
				}
			}
		}
		if bestScore >= homepageEarlyStop {
			break
		}
	}

	if bestScore >= homepageFloor {
		return best
	}
	return Resolution{Notes: fmt.Sprintf("no homepage candidate scored above %d for %q", homepageFloor, org.Name)}
}

// scoreOrgPage fetches a candidate page and measures how strongly it looks
// like the organization's own site. Token hits in the host and path count
// more than hits in the body; a page with zero token hits anywhere is
// rejected outright regardless of other vocabulary.
func (r *Resolver) scoreOrgPage(ctx context.Context, rawURL string, tokens []string, typ OrgType) int {
	res, ok := engineFetchMaybe(ctx, r.Fetch, rawURL, engine.FetchOptions{Retries: 1, MaxBytes: 256 * 1024})
	if !ok {
		return 0
	}

	hostPath := strings.ToLower(rawURL)
	if u, err := url.Parse(res.FinalURL); err == nil {
		hostPath = strings.ToLower(u.Hostname() + u.Path)
	}
	body := strings.ToLower(engine.PageText(res.Body))

	hostHits, bodyHits := 0, 0
	for _, t := range tokens {
		if strings.Contains(hostPath, t) {
			hostHits++
		}
		if strings.Contains(body, t) {
			bodyHits++
		}
	}
	if hostHits == 0 && bodyHits == 0 {
		return 0
	}
	score := hostHits*hostTokenWeight + bodyHits*bodyTokenWeight

	if strings.Contains(body, "official website") || strings.Contains(body, "welcome to") {
		score += officialLanguageBonus
	}

	vocab := govSiteVocab
	if typ == OrgFirstNation {
		vocab = indigenousSiteVocab
	}
	for _, v := range vocab {
		if strings.Contains(body, v) {
			score += domainVocabBonus
			break
		}
	}
	for _, v := range wrongSiteVocab {
		if strings.Contains(body, v) || strings.Contains(hostPath, strings.ReplaceAll(v, " ", "")) {
			score -= wrongSitePenalty
			break
		}
	}
	return score
}
