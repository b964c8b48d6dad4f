// Package ingest acquires raw Gutenberg and Library of Congress documents and
// normalizes them into corpus records.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/util"
	"github.com/ppiankov/concordia/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids a URL
var ErrDisallowed = errors.New("disallowed by robots.txt")

// ErrTooLarge is returned when a body exceeds the configured limit
var ErrTooLarge = errors.New("response body exceeds limit")

// Response is a fetched body and its final location
type Response struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// Fetcher performs polite GET requests: robots.txt, per-host rate limits,
// bounded bodies and retries on transient failures
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	robots     *util.RobotsChecker // nil skips robots.txt
	limiter    *worker.Limiter
	sleep      func(time.Duration)
}

// NewFetcher creates a new Fetcher from the ingest configuration
func NewFetcher(cfg model.IngestConfig) *Fetcher {
	client := &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	f := &Fetcher{
		httpClient: client,
		userAgent:  cfg.UserAgent,
		maxBytes:   cfg.MaxBodyBytes,
		maxRetries: cfg.MaxRetries,
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		sleep:      time.Sleep,
	}
	if cfg.RespectRobots {
		f.robots = util.NewRobotsCheckerWithClient(cfg.UserAgent, client)
	}
	return f
}

// Get fetches rawURL, retrying 408/429/5xx and network errors with backoff
func (f *Fetcher) Get(ctx context.Context, rawURL, accept string) (*Response, error) {
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowed, rawURL)
		}
		f.limiter.ApplyCrawlDelay(rawURL, delay)
	}

	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			f.sleep(time.Duration(1<<(attempt-1)) * time.Second)
		}
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}

		resp, retry, err := f.do(ctx, rawURL, accept)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, rawURL, accept string) (*Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if accept == "" {
		accept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retry := resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= http.StatusInternalServerError
		return nil, retry, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	limit := f.maxBytes
	if limit <= 0 {
		limit = 20_000_000
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, false, fmt.Errorf("%w (%d bytes): %s", ErrTooLarge, limit, rawURL)
	}

	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, false, nil
}
