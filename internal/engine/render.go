package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// RenderedPage is what the renderer observed for one navigation: the fully
// rendered DOM, the final URL, and every sub-resource request the page issued.
// The request list is how the browser crawl spots ATS endpoints that never
// appear in the DOM (XHR-loaded job widgets).
type RenderedPage struct {
	HTML        string
	FinalURL    string
	RequestURLs []string
}

// RenderFunc is the renderer contract consumed by the resolve package.
// A nil RenderFunc means no rendering capability is available.
type RenderFunc func(ctx context.Context, rawURL string) (*RenderedPage, error)

// Render opens the URL in a headless browser, waits for the DOM plus a short
// network-quiescence window (expiry of the window is non-fatal), and returns
// the rendered page. Requires Chrome/Chromium on the host.
func Render(ctx context.Context, rawURL string) (*RenderedPage, error) {
	metrics.RenderRequests.Add(1)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, cfg.RenderTimeout)
	defer cancel()

	var (
		mu       sync.Mutex
		requests []string
	)
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if e, ok := ev.(*network.EventRequestWillBeSent); ok {
			mu.Lock()
			requests = append(requests, e.Request.URL)
			mu.Unlock()
		}
	})

	page := &RenderedPage{}
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		// Quiescence window for script-rendered content. Bounded and best
		// effort: whatever DOM exists when it expires is what we read.
		chromedp.Sleep(cfg.RenderQuiesce),
		chromedp.Location(&page.FinalURL),
		chromedp.OuterHTML("html", &page.HTML),
	)
	if err != nil {
		metrics.RenderErrors.Add(1)
		return nil, fmt.Errorf("render %s: %w", rawURL, err)
	}

	mu.Lock()
	page.RequestURLs = append([]string(nil), requests...)
	mu.Unlock()

	if page.FinalURL == "" {
		page.FinalURL = rawURL
	}
	return page, nil
}

// RendererIfEnabled returns the engine renderer or nil when rendering is
// disabled by configuration.
func RendererIfEnabled() RenderFunc {
	if !cfg.RenderEnabled {
		return nil
	}
	return Render
}
