// orgjobs is the Organization Jobs Resolution MCP server.
//
// Locates, for small-government and community organizations (municipalities,
// First Nations, school districts, health authorities, libraries), the
// official homepage, the jobs-listing URL, and the ATS platform serving it.
//
// Exposes three MCP tools: resolve_org, classify_jobs_url, research_homepage.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/civicseek/orgjobs/internal/engine"
	"github.com/civicseek/orgjobs/internal/engine/resolve"
	"github.com/civicseek/orgjobs/internal/orgserver"
	"github.com/civicseek/orgjobs/internal/runlog"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8894")
)

func main() {
	initEngine()

	slog.Info("starting orgjobs",
		slog.String("port", mcpPort),
	)

	cache := engine.NewCache(
		env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 15*time.Minute),
		env.Int("CACHE_MAX_ENTRIES", 1000),
		env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
	)
	breaker := engine.NewBreaker()
	resolver := resolve.New(cache, breaker)

	var store *runlog.Store
	if path := env.Str("DATABASE_PATH", ""); path != "" {
		s, err := runlog.Open(path)
		if err != nil {
			slog.Warn("run log init failed, bookkeeping disabled", slog.Any("error", err))
		} else {
			store = s
			defer store.Close()
			slog.Info("run log initialized", slog.String("path", path))
		}
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "orgjobs",
		Version: version,
	}, nil)

	orgserver.RegisterTools(server, resolver, store)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "orgjobs",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics(cache),
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 10*time.Second),
		FetchMaxBytes:        int64(env.Int("FETCH_MAX_BYTES", 512*1024)),
		MaxFetchRetries:      env.Int("MAX_FETCH_RETRIES", 1),
		HostRPS:              env.Float("HOST_RPS", 1.0),
		RenderEnabled:        env.Str("RENDER_ENABLED", "") == "1",
		RenderTimeout:        env.Duration("RENDER_TIMEOUT", 25*time.Second),
		RenderQuiesce:        env.Duration("RENDER_QUIESCE", 3*time.Second),
		SERPEndpoint:         env.Str("SERP_ENDPOINT", "https://html.duckduckgo.com/html/"),
		WikidataAPI:          env.Str("WIKIDATA_API", "https://www.wikidata.org/w/api.php"),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, search research disabled", slog.Any("error", err))
	} else {
		c.SERPClient = bc
		slog.Info("stealth browser client initialized")
	}

	engine.Init(c)
}
