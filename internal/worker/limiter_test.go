package worker

import (
	"context"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}

	l3 := NewLimiter(0, 1)
	if l3.defaultRate != rate.Inf {
		t.Errorf("expected unlimited rate for 0 rps, got %v", l3.defaultRate)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://www.gutenberg.org/ebooks/6812"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different host has its own bucket
	if err := limiter.Wait(ctx, "https://www.loc.gov/item/mal0440500/"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_CanceledContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	_ = limiter.Wait(ctx, "https://www.loc.gov/a") // consumes the burst
	cancel()

	if err := limiter.Wait(ctx, "https://www.loc.gov/b"); err == nil {
		t.Error("expected error on canceled context")
	}
}

func TestLimiter_ApplyCrawlDelay(t *testing.T) {
	limiter := NewLimiter(10, 5)
	u := "https://www.gutenberg.org/ebooks/6812"

	limiter.ApplyCrawlDelay(u, 2*time.Second)
	if got := limiter.HostLimit(u); got != rate.Every(2*time.Second) {
		t.Errorf("expected 0.5 rps after crawl delay, got %v", got)
	}

	// A shorter delay never speeds the host back up
	limiter.ApplyCrawlDelay(u, 100*time.Millisecond)
	if got := limiter.HostLimit(u); got != rate.Every(2*time.Second) {
		t.Errorf("expected rate to stay at 0.5 rps, got %v", got)
	}

	if got := limiter.HostLimit("https://www.loc.gov/"); got != 10 {
		t.Errorf("expected other hosts untouched, got %v", got)
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	if !limiter.Allow("https://example.com/a") {
		t.Error("expected first request to be allowed")
	}
	if limiter.Allow("https://example.com/b") {
		t.Error("expected second request to be throttled")
	}
}
