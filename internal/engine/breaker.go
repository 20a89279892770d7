package engine

import (
	"log/slog"
	"sync/atomic"
)

// Breaker is the search anti-bot circuit breaker: a write-once monotonic
// flag. The first search response recognized as a bot challenge trips it
// permanently; every later search call short-circuits to "no candidates"
// without issuing a request. Races between concurrent trippers are harmless,
// at worst a few redundant in-flight requests complete.
//
// Owned by the orchestrator and injected into resolvers so its lifetime and
// test reset are explicit, rather than hiding process state in a global.
type Breaker struct {
	open   atomic.Bool
	reason atomic.Value // string
}

// NewBreaker returns a closed breaker.
func NewBreaker() *Breaker {
	return &Breaker{}
}

// Trip opens the breaker. Returns true on the first trip.
func (b *Breaker) Trip(reason string) bool {
	first := b.open.CompareAndSwap(false, true)
	if first {
		b.reason.Store(reason)
		metrics.SERPBlocked.Add(1)
		slog.Warn("search disabled for remainder of process", slog.String("reason", reason))
	}
	return first
}

// Open reports whether the breaker has tripped.
func (b *Breaker) Open() bool {
	return b.open.Load()
}

// Reason returns the recorded trip reason, or "".
func (b *Breaker) Reason() string {
	if r, ok := b.reason.Load().(string); ok {
		return r
	}
	return ""
}
