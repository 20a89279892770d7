package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/civicseek/orgjobs/internal/engine"
)

const (
	sameHostBonus   = 3
	offHostPenalty  = 2
	pdfContentBonus = 2
)

func jobsQueries(org Org, homepage string) []string {
	var queries []string
	if homepage != "" {
		if u, err := url.Parse(homepage); err == nil && u.Hostname() != "" {
			host := strings.TrimPrefix(u.Hostname(), "www.")
			queries = append(queries,
				"site:"+host+" jobs",
				"site:"+host+" careers",
			)
		}
	}
	return append(queries,
		org.Name+" jobs",
		org.Name+" careers",
		org.Name+" employment opportunities",
	)
}

// ResearchJobsURL finds a jobs-listing URL by search when the homepage
// cascade came up empty. Site-scoped queries run first when a homepage is
// known. A candidate matching the ATS vendor table is accepted immediately.
func (r *Resolver) ResearchJobsURL(ctx context.Context, org Org, homepage string) Resolution {
	tokens := NameTokens(org.Name)
	if len(tokens) == 0 && homepage == "" {
		return Resolution{Notes: fmt.Sprintf("name %q has no distinctive tokens; research refused", org.Name)}
	}

	bestScore := 0
	var best Resolution

	for _, query := range jobsQueries(org, homepage) {
		urls, err := r.searchURLs(ctx, query)
		if err != nil {
			if errors.Is(err, ErrSearchDisabled) {
				break
			}
			slog.Debug("jobs search failed", slog.String("query", query), slog.Any("error", err))
			continue
		}

		tried := 0
		for _, u := range urls {
			if IsVendorURL(u) {
				return Resolution{
					URL:           u,
					DiscoveredVia: OriginSearch,
					Notes:         fmt.Sprintf("search %q matched known ATS (score %d)", query, scoreVendorMatch),
				}
			}
			if tried++; tried > maxCandidatesPerQuery {
				break
			}

			score := r.scoreJobsCandidate(ctx, u, homepage)
			if score > bestScore {
				bestScore = score
				best = Resolution{
					URL:           u,
					DiscoveredVia: OriginSearch,
					Notes:         fmt.Sprintf("search %q (score %d)", query, score),
				}
			}
		}
		if bestScore >= jobsEarlyStop {
			break
		}
	}

	if bestScore >= jobsFloor {
		return best
	}
	return Resolution{Notes: fmt.Sprintf("no jobs URL candidate scored above %d for %q", jobsFloor, org.Name)}
}

// scoreJobsCandidate weighs one search hit: host affinity with the known
// homepage, job-keyword presence in the URL and fetched content, and a bonus
// when the content resolves to a PDF posting document.
func (r *Resolver) scoreJobsCandidate(ctx context.Context, rawURL, homepage string) int {
	score := 0
	if homepage != "" {
		if engine.SameHost(rawURL, homepage) {
			score += sameHostBonus
		} else {
			score -= offHostPenalty
		}
	}

	hostPath := strings.ToLower(rawURL)
	if u, err := url.Parse(rawURL); err == nil {
		hostPath = strings.ToLower(u.Hostname() + u.Path)
	}
	score += engine.KeywordScore(hostPath, jobKeywords)

	res, ok := engineFetchMaybe(ctx, r.Fetch, rawURL, engine.FetchOptions{Retries: 1, MaxBytes: 256 * 1024})
	if !ok {
		return score
	}
	if isPDF(res.FinalURL, res.ContentType) {
		return score + pdfContentBonus
	}

	title := strings.ToLower(engine.PageTitle(res.Body))
	body := strings.ToLower(engine.PageText(res.Body))
	score += engine.KeywordScore(title, jobKeywords)
	score += countDistinct(body, careerKeywords)
	return score
}

// ResolveOrg is the full per-organization pipeline: establish a homepage
// (given or researched), run the discovery cascade against it, fall back to
// jobs-URL research, then classify whatever was found. Organizations for
// which any stage came up empty are flagged for manual review instead of
// erroring.
func (r *Resolver) ResolveOrg(ctx context.Context, org Org, fast bool) OrgResolution {
	var out OrgResolution

	if org.Homepage != "" {
		out.Homepage = Resolution{URL: engine.NormalizeURL(org.Homepage), Notes: "homepage provided by caller"}
	} else {
		out.Homepage = r.ResearchHomepage(ctx, org)
	}

	if out.Homepage.Found() {
		if fast {
			out.JobsURL = r.DiscoverJobsURLFast(ctx, out.Homepage.URL)
		} else {
			out.JobsURL = r.DiscoverJobsURL(ctx, out.Homepage.URL)
		}
	}
	if !out.JobsURL.Found() {
		if res := r.ResearchJobsURL(ctx, org, out.Homepage.URL); res.Found() {
			out.JobsURL = res
		} else if out.JobsURL.Notes == "" {
			out.JobsURL = res
		}
	}

	if out.JobsURL.Found() {
		out.Classification = r.Classify(ctx, out.JobsURL.URL)
	} else {
		out.Classification = classUnknown()
	}

	switch {
	case !out.Homepage.Found():
		out.NeedsReview = true
		out.ReviewReason = "homepage unresolved: " + out.Homepage.Notes
	case !out.JobsURL.Found():
		out.NeedsReview = true
		out.ReviewReason = "jobs URL unresolved: " + out.JobsURL.Notes
	}

	slog.Info("org resolved",
		slog.String("name", org.Name),
		slog.String("homepage", out.Homepage.URL),
		slog.String("jobs_url", out.JobsURL.URL),
		slog.String("adapter", out.Classification.AdapterID),
		slog.Float64("confidence", out.Classification.Confidence),
		slog.Bool("needs_review", out.NeedsReview))
	return out
}
