package engine

import (
	"context"
	"testing"
	"time"
)

func TestCacheURLsRoundtrip(t *testing.T) {
	c := NewCache("", time.Minute, 0, 0)
	ctx := context.Background()

	if _, ok := c.GetURLs(ctx, "example town jobs"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	want := []string{"https://example.com/jobs", "https://example.com/careers"}
	c.SetURLs(ctx, "example town jobs", want)

	got, ok := c.GetURLs(ctx, "example town jobs")
	if !ok {
		t.Fatal("expected hit, got miss")
	}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCacheEmptyListIsValidHit(t *testing.T) {
	c := NewCache("", time.Minute, 0, 0)
	ctx := context.Background()

	c.SetURLs(ctx, "query with no results", nil)

	got, ok := c.GetURLs(ctx, "query with no results")
	if !ok {
		t.Fatal("empty result set must still be a cache hit")
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestCacheQueryNormalization(t *testing.T) {
	c := NewCache("", time.Minute, 0, 0)
	ctx := context.Background()

	c.SetURLs(ctx, "Example Town  Jobs", []string{"https://example.com"})
	if _, ok := c.GetURLs(ctx, "example town jobs"); !ok {
		t.Error("case and whitespace variants must share a slot")
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Example Town", "example town"},
		{"  spaced   out  ", "spaced out"},
		{"MiXeD\tCase", "mixed case"},
	}
	for _, tt := range tests {
		if got := NormalizeQuery(tt.in); got != tt.want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCacheJSONRoundtrip(t *testing.T) {
	type verdict struct {
		Adapter    string  `json:"adapter"`
		Confidence float64 `json:"confidence"`
	}
	c := NewCache("", time.Minute, 0, 0)
	ctx := context.Background()
	key := Key("classify", "https://example.com/jobs")

	if _, ok := GetJSON[verdict](ctx, c, key); ok {
		t.Fatal("unexpected hit before store")
	}
	SetJSON(ctx, c, key, verdict{Adapter: "workday", Confidence: 1.0})

	got, ok := GetJSON[verdict](ctx, c, key)
	if !ok {
		t.Fatal("expected hit after store")
	}
	if got.Adapter != "workday" || got.Confidence != 1.0 {
		t.Errorf("got %+v", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache("", time.Millisecond, 0, 0)
	ctx := context.Background()

	c.SetURLs(ctx, "q", []string{"https://example.com"})
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.GetURLs(ctx, "q"); ok {
		t.Error("expired entry must miss")
	}
}

func TestCacheStats(t *testing.T) {
	c := NewCache("", time.Minute, 0, 0)
	ctx := context.Background()

	c.GetURLs(ctx, "miss")
	c.SetURLs(ctx, "hit", []string{"https://example.com"})
	c.GetURLs(ctx, "hit")

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
}

func TestKeyDeterministic(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Error("same parts must produce same key")
	}
	if Key("a", "b") == Key("a", "c") {
		t.Error("different parts must produce different keys")
	}
}
