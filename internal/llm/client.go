package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ppiankov/concordia/internal/cache"
	"github.com/ppiankov/concordia/internal/telemetry"
)

const (
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	defaultMaxRetries     = 3
)

// Client wraps a Provider with rate limiting, retries and a response cache.
// Calls are blocking and sequential; the client holds no per-call state.
type Client struct {
	provider   Provider
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
	metrics    *telemetry.Metrics
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	sleeper    func(time.Duration)
}

// Option configures a Client
type Option func(*Client)

// WithCache enables response caching; nil disables it
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the counters updated per call
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRateLimit caps requests per second; rps <= 0 disables limiting
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxRetries sets how many times a retryable failure is retried
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests)
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient wraps provider
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		logger:     zap.NewNop(),
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultRetryBaseDelay,
		maxDelay:   defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the wrapped provider name
func (c *Client) Name() string {
	return c.provider.Name()
}

// Generate returns a cached response when one exists, otherwise calls the
// provider under the rate limit, retrying transient failures
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	key := c.cacheKey(req)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			var resp GenerateResponse
			if err := json.Unmarshal(data, &resp); err == nil {
				c.metrics.CacheHit()
				resp.Cached = true
				return &resp, nil
			}
		}
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		resp, err := c.provider.Generate(ctx, req)
		if err == nil {
			c.metrics.LLMRequest(c.Name(), "ok")
			c.store(key, resp)
			return resp, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			c.metrics.LLMRequest(c.Name(), "error")
			if attempt > 1 {
				return nil, fmt.Errorf("generate failed after %d attempts: %w", attempt, err)
			}
			return nil, err
		}

		c.metrics.LLMRequest(c.Name(), "retry")
		c.logger.Warn("retrying model request",
			zap.String("provider", c.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	c.metrics.LLMRequest(c.Name(), "error")
	return nil, fmt.Errorf("generate failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) cacheKey(req GenerateRequest) string {
	return cache.Key(
		c.Name(),
		req.Model,
		strconv.FormatFloat(req.Temperature, 'f', -1, 64),
		req.System,
		req.User,
		strconv.Itoa(req.Sample),
	)
}

func (c *Client) store(key string, resp *GenerateResponse) {
	if c.cache == nil || resp == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.cache.Set(key, data, c.cacheTTL); err != nil {
		c.logger.Warn("failed to cache model response", zap.Error(err))
	}
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil {
		return 0, false
	}
	if ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if !statusErr.Retryable() {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return c.capDelay(statusErr.RetryAfter), true
		}
		return c.backoffDelay(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}

	return 0, false
}

// backoffDelay doubles from the base delay: attempt 1 -> base, 2 -> 2*base, ...
func (c *Client) backoffDelay(attempt int) time.Duration {
	if c.baseDelay <= 0 {
		return 0
	}
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if c.maxDelay > 0 && delay > c.maxDelay/2 {
			return c.maxDelay
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if c.maxDelay > 0 && delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP date
func ParseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
