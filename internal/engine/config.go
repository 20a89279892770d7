package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	FetchTimeout    time.Duration
	FetchMaxBytes   int64
	MaxFetchRetries int
	HostRPS         float64 // per-host request rate; excess requests queue, never reject

	RenderEnabled bool
	RenderTimeout time.Duration
	RenderQuiesce time.Duration // network-idle wait inside a render; expiry is non-fatal

	SERPEndpoint string // search result-page endpoint scraped by the research fallback
	WikidataAPI  string

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client
	SERPClient *BrowserClient // nil = search research disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (resolve, orgserver).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 10 * time.Second
	}
	if c.FetchMaxBytes <= 0 {
		c.FetchMaxBytes = 512 * 1024
	}
	if c.MaxFetchRetries < 0 {
		c.MaxFetchRetries = 0
	}
	if c.HostRPS <= 0 {
		c.HostRPS = 1.0
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = 25 * time.Second
	}
	if c.RenderQuiesce <= 0 {
		c.RenderQuiesce = 3 * time.Second
	}
	if c.SERPEndpoint == "" {
		c.SERPEndpoint = "https://html.duckduckgo.com/html/"
	}
	if c.WikidataAPI == "" {
		c.WikidataAPI = "https://www.wikidata.org/w/api.php"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
}
