package scrape

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultUserAgent mimics a real browser; listing sites trivially block
// default Go client identifiers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// probeTimeout bounds the best-effort image existence check.
const probeTimeout = 5 * time.Second

// Fetcher retrieves pages over HTTP with browser-like headers, a bounded
// per-call timeout, and a single retry with backoff on failure.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	retryDelay time.Duration
}

// NewFetcher creates a fetcher. timeout bounds each request; retryDelay is
// the pause before the single retry.
func NewFetcher(timeout time.Duration, userAgent string, retryDelay time.Duration) *Fetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		retryDelay: retryDelay,
	}
}

// Fetch retrieves the page body. A failed attempt (network error or non-200
// status) is retried once after the configured delay; the second failure is
// returned to the caller.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	body, err := f.fetchOnce(ctx, pageURL)
	if err == nil {
		return body, nil
	}

	slog.Warn("Fetch failed, retrying once", "url", pageURL, "error", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.retryDelay):
	}

	body, retryErr := f.fetchOnce(ctx, pageURL)
	if retryErr != nil {
		return nil, fmt.Errorf("failed to fetch %s after retry: %w", pageURL, retryErr)
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

// Probe reports whether imageURL looks reachable. Best effort: a HEAD
// request with a short timeout, falling back to GET for servers that reject
// HEAD. Any doubt counts as unreachable so the caller degrades to text.
func (f *Fetcher) Probe(ctx context.Context, imageURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ok, retriable := f.probeOnce(probeCtx, http.MethodHead, imageURL)
	if ok {
		return true
	}
	if !retriable {
		return false
	}
	ok, _ = f.probeOnce(probeCtx, http.MethodGet, imageURL)
	return ok
}

func (f *Fetcher) probeOnce(ctx context.Context, method, imageURL string) (ok, headRejected bool) {
	req, err := http.NewRequestWithContext(ctx, method, imageURL, nil)
	if err != nil {
		return false, false
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return false, false
	}
	defer resp.Body.Close()
	// Drain nothing; existence is all we need.

	if resp.StatusCode == http.StatusOK {
		return true, false
	}
	return false, resp.StatusCode == http.StatusMethodNotAllowed
}
