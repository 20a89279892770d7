// Package toolutil provides shared helpers for orgjobs MCP tools.
package toolutil

import (
	"context"

	"github.com/civicseek/orgjobs/internal/engine"
)

// CacheLoadJSON tries to load a cached tool result of type T.
// Returns the decoded value and true on hit; zero value and false otherwise.
func CacheLoadJSON[T any](ctx context.Context, c *engine.Cache, key string) (T, bool) {
	return engine.GetJSON[T](ctx, c, key)
}

// CacheStoreJSON stores a tool result under key. Tool results are pure
// functions of their input for a given run, so overwrites are idempotent.
func CacheStoreJSON[T any](ctx context.Context, c *engine.Cache, key string, v T) {
	engine.SetJSON(ctx, c, key, v)
}

// NormType normalises an organization type field: empty string stays empty
// and is mapped to "other" downstream.
func NormType(t string) string {
	if t == "" {
		return "other"
	}
	return t
}
