package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/civicseek/orgjobs/internal/engine"
)

// kgEntity is one plausible knowledge-graph match for an organization name.
type kgEntity struct {
	ID          string
	Label       string
	Description string
	Similarity  float64
}

// kgEligible reports whether the organization type has a reliable enough
// knowledge-graph presence to be worth the lookup. Unknown/other org types
// skip straight to search-engine research.
func kgEligible(typ OrgType) bool {
	switch typ {
	case OrgFirstNation, OrgMunicipality, OrgSchoolDistrict, OrgHealthAuthority, OrgLibrary:
		return true
	}
	return false
}

func orgTypeQualifier(typ OrgType) string {
	switch typ {
	case OrgFirstNation:
		return "first nation"
	case OrgMunicipality:
		return "municipality"
	case OrgSchoolDistrict:
		return "school district"
	case OrgHealthAuthority:
		return "health authority"
	case OrgLibrary:
		return "public library"
	}
	return ""
}

// kgPlausibleDescription checks that an entity's free-text description looks
// like the right kind of entity for the organization type. Wikidata labels
// collide across towns, bands, people, and songs, and the description is the
// cheapest disambiguator available before fetching claims.
func kgPlausibleDescription(desc string, typ OrgType) bool {
	if desc == "" {
		return false
	}
	d := strings.ToLower(desc)
	var vocab []string
	switch typ {
	case OrgFirstNation:
		vocab = []string{"first nation", "band", "indigenous", "reserve", "tribe", "aboriginal"}
	case OrgMunicipality:
		vocab = []string{"town", "city", "village", "municipality", "township", "county", "district"}
	case OrgSchoolDistrict:
		vocab = []string{"school", "education"}
	case OrgHealthAuthority:
		vocab = []string{"health", "hospital"}
	case OrgLibrary:
		vocab = []string{"library"}
	default:
		return true
	}
	for _, v := range vocab {
		if strings.Contains(d, v) {
			return true
		}
	}
	return false
}

// kgRegionHint reports whether the description names the expected
// country/region, which earns a fixed scoring bonus downstream.
func kgRegionHint(desc string) bool {
	d := strings.ToLower(desc)
	for _, region := range []string{"canada", "canadian", "ontario", "british columbia", "alberta", "saskatchewan", "manitoba", "quebec", "yukon", "nunavut", "northwest territories", "nova scotia", "new brunswick", "newfoundland", "prince edward island"} {
		if strings.Contains(d, region) {
			return true
		}
	}
	return false
}

// kgSearchEntities queries wbsearchentities for the name and a type-qualified
// variant, filters by name similarity and description plausibility, and
// returns surviving entities with their similarity attached.
func (r *Resolver) kgSearchEntities(ctx context.Context, name string, typ OrgType) ([]kgEntity, error) {
	queries := []string{name}
	if q := orgTypeQualifier(typ); q != "" && !strings.Contains(strings.ToLower(name), q) {
		queries = append(queries, name+" "+q)
	}

	var out []kgEntity
	seen := map[string]bool{}
	for _, q := range queries {
		ents, err := r.kgSearchOnce(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, e := range ents {
			if seen[e.ID] {
				continue
			}
			e.Similarity = NameSimilarity(name, e.Label)
			if e.Similarity < kgMinSimilarity || !kgPlausibleDescription(e.Description, typ) {
				continue
			}
			seen[e.ID] = true
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *Resolver) kgSearchOnce(ctx context.Context, query string) ([]kgEntity, error) {
	engine.IncrKGRequests()

	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {query},
		"language": {"en"},
		"type":     {"item"},
		"limit":    {"5"},
		"format":   {"json"},
	}
	res, err := r.Fetch(ctx, engine.Cfg.WikidataAPI+"?"+params.Encode(), engine.FetchOptions{Retries: 1})
	if err != nil {
		return nil, fmt.Errorf("knowledge graph search %q: %w", query, err)
	}

	var body struct {
		Search []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			Description string `json:"description"`
		} `json:"search"`
	}
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, fmt.Errorf("knowledge graph search %q: decode: %w", query, err)
	}

	ents := make([]kgEntity, 0, len(body.Search))
	for _, s := range body.Search {
		ents = append(ents, kgEntity{ID: s.ID, Label: s.Label, Description: s.Description})
	}
	return ents, nil
}

// kgOfficialWebsites fetches the entity's official-website (P856) claims.
// Preferred-rank statements shadow normal ones and deprecated statements are
// dropped outright.
func (r *Resolver) kgOfficialWebsites(ctx context.Context, entityID string) ([]string, error) {
	engine.IncrKGRequests()

	params := url.Values{
		"action":   {"wbgetclaims"},
		"entity":   {entityID},
		"property": {"P856"},
		"format":   {"json"},
	}
	res, err := r.Fetch(ctx, engine.Cfg.WikidataAPI+"?"+params.Encode(), engine.FetchOptions{Retries: 1})
	if err != nil {
		return nil, fmt.Errorf("knowledge graph claims %s: %w", entityID, err)
	}

	var body struct {
		Claims map[string][]struct {
			MainSnak struct {
				DataValue struct {
					Value string `json:"value"`
				} `json:"datavalue"`
			} `json:"mainsnak"`
			Rank string `json:"rank"`
		} `json:"claims"`
	}
	if err := json.Unmarshal(res.Body, &body); err != nil {
		return nil, fmt.Errorf("knowledge graph claims %s: decode: %w", entityID, err)
	}

	var preferred, normal []string
	for _, claim := range body.Claims["P856"] {
		site := strings.TrimSpace(claim.MainSnak.DataValue.Value)
		if site == "" || claim.Rank == "deprecated" {
			continue
		}
		if claim.Rank == "preferred" {
			preferred = append(preferred, site)
		} else {
			normal = append(normal, site)
		}
	}
	if len(preferred) > 0 {
		return preferred, nil
	}
	return normal, nil
}
