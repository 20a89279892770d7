package engine

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// FetchOptions controls a single logical fetch (which may span retries).
type FetchOptions struct {
	Method   string
	Timeout  time.Duration // per attempt; 0 = engine default
	MaxBytes int64         // body truncation budget; 0 = engine default
	Retries  int           // extra attempts after the first; -1 = engine default
	Headers  map[string]string
}

// FetchResult is the outcome of a successful fetch. FinalURL is the URL after
// redirect following, which is what the ATS classifier matches against.
type FetchResult struct {
	Status      int
	FinalURL    string
	Header      http.Header
	Body        []byte
	ContentType string
	Truncated   bool
}

// FetchFunc is the fetcher contract consumed by the resolve package.
// Resolution code depends on this type, not on the concrete client, so tests
// substitute doubles with call counters.
type FetchFunc func(ctx context.Context, rawURL string, opts FetchOptions) (*FetchResult, error)

// StatusError reports a terminal non-success HTTP status.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d", e.Status)
}

// hostGate serializes requests per destination host: one in-flight request,
// paced to ~HostRPS. Excess requests queue on the mutex and the limiter.
type hostGate struct {
	mu  sync.Mutex
	lim *rate.Limiter
}

var (
	gatesMu sync.Mutex
	gates   = map[string]*hostGate{}
)

func gateFor(host string) *hostGate {
	gatesMu.Lock()
	defer gatesMu.Unlock()
	g, ok := gates[host]
	if !ok {
		g = &hostGate{lim: rate.NewLimiter(rate.Limit(cfg.HostRPS), 1)}
		gates[host] = g
	}
	return g
}

// Fetch performs an HTTP request with per-host rate limiting, bounded retries
// with exponential backoff, redirect following, charset decoding, and body
// truncation at MaxBytes.
func Fetch(ctx context.Context, rawURL string, opts FetchOptions) (*FetchResult, error) {
	metrics.FetchRequests.Add(1)

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("invalid url %q", rawURL)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = cfg.FetchTimeout
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = cfg.FetchMaxBytes
	}
	retries := opts.Retries
	if retries < 0 {
		retries = cfg.MaxFetchRetries
	}

	gate := gateFor(u.Hostname())

	operation := func() (*FetchResult, error) {
		gate.mu.Lock()
		defer gate.mu.Unlock()
		if err := gate.lim.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, method, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept-Encoding", "gzip")
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}

		resp, err := cfg.HTTPClient.Do(req)
		if err != nil {
			if isRetryable(err) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if IsRetryableStatus(resp.StatusCode) {
			return nil, &StatusError{Status: resp.StatusCode}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, backoff.Permanent(&StatusError{Status: resp.StatusCode})
		}

		body, truncated, err := readBody(resp, maxBytes)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		finalURL := rawURL
		if resp.Request != nil && resp.Request.URL != nil {
			finalURL = resp.Request.URL.String()
		}

		return &FetchResult{
			Status:      resp.StatusCode,
			FinalURL:    finalURL,
			Header:      resp.Header,
			Body:        body,
			ContentType: resp.Header.Get("Content-Type"),
			Truncated:   truncated,
		}, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(retries)+1),
		backoff.WithMaxElapsedTime(time.Duration(retries+1)*timeout+10*time.Second),
	)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	return res, nil
}

// FetchMaybe is the sentinel variant: it never returns an error, only a
// result and an ok flag. Cascade strategies use it so a dead URL reads as
// "no candidate from this strategy" rather than a failure.
func FetchMaybe(ctx context.Context, rawURL string, opts FetchOptions) (*FetchResult, bool) {
	res, err := Fetch(ctx, rawURL, opts)
	if err != nil {
		return nil, false
	}
	return res, true
}

// readBody decodes the response body to UTF-8 and truncates at maxBytes.
func readBody(resp *http.Response, maxBytes int64) ([]byte, bool, error) {
	var r io.Reader = resp.Body
	if strings.Contains(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, false, err
		}
		defer gz.Close()
		r = gz
	}

	// Read one byte past the budget to detect truncation.
	limited := io.LimitReader(r, maxBytes+1)

	ctype := resp.Header.Get("Content-Type")
	if strings.Contains(ctype, "html") || strings.Contains(ctype, "xml") || strings.Contains(ctype, "text") {
		decoded, err := charset.NewReader(limited, ctype)
		if err == nil {
			limited = decoded
		}
	}

	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > maxBytes {
		return body[:maxBytes], true, nil
	}
	return body, false, nil
}

// ResetHostGates clears per-host limiter state. Test helper.
func ResetHostGates() {
	gatesMu.Lock()
	defer gatesMu.Unlock()
	gates = map[string]*hostGate{}
}
