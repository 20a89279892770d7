package resolve

import (
	"regexp"
	"strings"
)

// Governance vocabulary appears in nearly every organization name in this
// domain and carries no identifying signal, so it never counts as evidence
// that a page is about the right organization.
var nameStopWords = map[string]bool{
	"the": true, "and": true, "for": true,
	"first": true, "nation": true, "nations": true, "band": true,
	"tribe": true, "tribal": true, "indian": true,
	"city": true, "town": true, "village": true, "township": true,
	"county": true, "district": true, "regional": true, "region": true,
	"municipality": true, "municipal": true, "borough": true,
	"school": true, "schools": true, "board": true, "division": true,
	"health": true, "authority": true, "services": true,
	"library": true, "libraries": true, "public": true,
	"office": true, "government": true, "council": true,
	"department": true, "agency": true,
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// NameTokens reduces an organization name to its distinctive tokens:
// lowercased, punctuation split, with short tokens and governance stop words
// removed. An empty result means the name is all boilerplate and token-based
// scoring must be refused rather than matched against nothing.
func NameTokens(name string) []string {
	fields := nonAlnumRe.Split(strings.ToLower(name), -1)
	tokens := make([]string, 0, len(fields))
	seen := map[string]bool{}
	for _, f := range fields {
		if len(f) < 3 || nameStopWords[f] || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// NameSimilarity compares two organization names on their distinctive tokens
// and returns a value in [0,1]. The denominator is the larger token set so
// superset labels score below 1.0.
func NameSimilarity(a, b string) float64 {
	ta, tb := NameTokens(a), NameTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	common := 0
	for _, t := range tb {
		if set[t] {
			common++
		}
	}
	max := len(ta)
	if len(tb) > max {
		max = len(tb)
	}
	return float64(common) / float64(max)
}
