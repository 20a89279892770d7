package engine

import (
	stealth "github.com/anatolykoptev/go-stealth"
)

// Re-export stealth types and helpers for engine consumers.
// The stealth client carries a Chrome TLS fingerprint; search-engine result
// pages are fetched through it so the research fallback survives basic
// bot filtering longer than a plain net/http client would.
type BrowserClient = stealth.BrowserClient

func ChromeHeaders() map[string]string { return stealth.ChromeHeaders() }
func RandomUserAgent() string          { return stealth.RandomUserAgent() }
