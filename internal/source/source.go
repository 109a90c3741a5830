// Package source fetches the latest posts of a blog. The listing page is
// scraped first; sources with a configured feed URL fall back to it when
// the listing fails or yields nothing.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goldlure/blogwatch/internal/blog"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (compatible; blogwatch/1.0; +https://github.com/goldlure/blogwatch)"
	maxRetries     = 3
	defaultLimit   = 5
	excerptRunes   = 200
)

// fetchSleep is the function used for retry backoff delays.
// It defaults to time.Sleep but can be overridden in tests.
var fetchSleep = time.Sleep

// Fetcher retrieves posts over HTTP. One instance is shared by all
// sources; it is safe for concurrent use.
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &uaTransport{base: http.DefaultTransport},
		},
	}
}

// Fetch returns the newest posts of src in listing order, newest first.
// Every returned post has its canonical link and source fields set. An
// empty slice with a nil error means the source really had nothing; the
// caller leaves its tracking state alone in that case.
func (f *Fetcher) Fetch(ctx context.Context, src blog.Source) ([]blog.Post, error) {
	posts, err := withRetry(func() ([]blog.Post, error) {
		return f.fetchListing(ctx, src)
	})
	if err == nil && len(posts) > 0 {
		return posts, nil
	}

	if src.Feed == "" {
		return posts, err
	}
	if err != nil {
		slog.Warn("listing fetch failed, trying feed", "source", src.Name, "error", err)
	} else {
		slog.Warn("listing page had no posts, trying feed", "source", src.Name)
	}

	return withRetry(func() ([]blog.Post, error) {
		return f.fetchFeed(ctx, src)
	})
}

func (f *Fetcher) fetchListing(ctx context.Context, src blog.Source) ([]blog.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", src.URL, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", src.URL, resp.StatusCode)
	}

	return parseListing(resp, src)
}

// uaTransport injects a User-Agent header into every request.
type uaTransport struct {
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

func withRetry(fetch func() ([]blog.Post, error)) ([]blog.Post, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		posts, err := fetch()
		if err == nil {
			return posts, nil
		}
		if !isRetryableError(err) {
			return nil, err
		}
		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s
			fetchSleep(backoff)
		}
	}
	return nil, lastErr
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	// Timeout errors
	if strings.Contains(s, "timeout") || strings.Contains(s, "Timeout") {
		return true
	}
	// Connection errors
	if strings.Contains(s, "connection refused") || strings.Contains(s, "no such host") {
		return true
	}
	// Rate limiting and HTTP 5xx errors (server-side, worth retrying)
	if strings.Contains(s, "429") || strings.Contains(s, "500") ||
		strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "504") {
		return true
	}
	return false
}

func sourceLimit(src blog.Source) int {
	if src.Limit > 0 {
		return src.Limit
	}
	return defaultLimit
}
