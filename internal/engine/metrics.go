package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests     atomic.Int64
	FetchErrors       atomic.Int64
	RenderRequests    atomic.Int64
	RenderErrors      atomic.Int64
	SERPRequests      atomic.Int64
	SERPBlocked       atomic.Int64
	KGRequests        atomic.Int64
	ClassifyRequests  atomic.Int64
	CascadeRuns       atomic.Int64
	ManualReviewFlags atomic.Int64
}

// Incrementors for the resolve sub-package.
func IncrSERPRequests()      { metrics.SERPRequests.Add(1) }
func IncrKGRequests()        { metrics.KGRequests.Add(1) }
func IncrClassifyRequests()  { metrics.ClassifyRequests.Add(1) }
func IncrCascadeRuns()       { metrics.CascadeRuns.Add(1) }
func IncrManualReviewFlags() { metrics.ManualReviewFlags.Add(1) }

// MetricsSnapshot returns a snapshot of all counters. Cache stats are
// appended by the caller that owns the cache instance.
func MetricsSnapshot() map[string]int64 {
	return map[string]int64{
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"render_requests":     metrics.RenderRequests.Load(),
		"render_errors":       metrics.RenderErrors.Load(),
		"serp_requests":       metrics.SERPRequests.Load(),
		"serp_blocked":        metrics.SERPBlocked.Load(),
		"kg_requests":         metrics.KGRequests.Load(),
		"classify_requests":   metrics.ClassifyRequests.Load(),
		"cascade_runs":        metrics.CascadeRuns.Load(),
		"manual_review_flags": metrics.ManualReviewFlags.Load(),
	}
}

// FormatMetrics renders counters as plain text for the HTTP metrics endpoint.
func FormatMetrics(cache *Cache) func() string {
	return func() string {
		m := MetricsSnapshot()
		keys := []string{
			"fetch_requests", "fetch_errors",
			"render_requests", "render_errors",
			"serp_requests", "serp_blocked",
			"kg_requests", "classify_requests",
			"cascade_runs", "manual_review_flags",
		}
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "%s %d\n", k, m[k])
		}
		hits, misses := cache.Stats()
		fmt.Fprintf(&sb, "cache_hits %d\ncache_misses %d\n", hits, misses)
		return sb.String()
	}
}
