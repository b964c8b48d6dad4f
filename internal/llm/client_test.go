package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ppiankov/concordia/internal/cache"
	"github.com/ppiankov/concordia/internal/telemetry"
)

// MockProvider replays scripted responses and records every request
type MockProvider struct {
	Responses []string
	Errors    []error
	Requests  []GenerateRequest
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	i := len(m.Requests)
	m.Requests = append(m.Requests, req)
	if i < len(m.Errors) && m.Errors[i] != nil {
		return nil, m.Errors[i]
	}
	text := ""
	if i < len(m.Responses) {
		text = m.Responses[i]
	}
	return &GenerateResponse{Text: text, Model: req.Model}, nil
}

func TestClient_RetriesRetryableStatus(t *testing.T) {
	mock := &MockProvider{
		Errors: []error{
			&StatusError{Provider: "mock", StatusCode: http.StatusTooManyRequests, RetryAfter: 3 * time.Second},
			&StatusError{Provider: "mock", StatusCode: http.StatusBadGateway},
			nil,
		},
		Responses: []string{"", "", "ok"},
	}

	var slept []time.Duration
	core, logs := observer.New(zapcore.WarnLevel)
	metrics := telemetry.NewMetrics()

	client := NewClient(mock,
		WithMaxRetries(3),
		WithRetryBackoff(time.Second, 10*time.Second),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithLogger(zap.New(core)),
		WithMetrics(metrics),
	)

	resp, err := client.Generate(context.Background(), GenerateRequest{User: "u"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Expected ok, got %q", resp.Text)
	}
	if len(mock.Requests) != 3 {
		t.Errorf("Expected 3 attempts, got %d", len(mock.Requests))
	}
	if len(slept) != 2 || slept[0] != 3*time.Second || slept[1] != 2*time.Second {
		t.Errorf("Expected delays [3s 2s] (Retry-After then backoff), got %v", slept)
	}
	if logs.FilterMessage("retrying model request").Len() != 2 {
		t.Errorf("Expected 2 retry warnings, got %d", logs.Len())
	}
	if got := testutil.ToFloat64(metrics.LLMRequestsTotal.WithLabelValues("mock", "retry")); got != 2 {
		t.Errorf("Expected 2 retry outcomes, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.LLMRequestsTotal.WithLabelValues("mock", "ok")); got != 1 {
		t.Errorf("Expected 1 ok outcome, got %v", got)
	}
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	mock := &MockProvider{
		Errors: []error{&StatusError{Provider: "mock", StatusCode: http.StatusUnauthorized}},
	}
	client := NewClient(mock, WithSleeper(func(time.Duration) {}))

	_, err := client.Generate(context.Background(), GenerateRequest{User: "u"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("Expected 401 StatusError, got %v", err)
	}
	if len(mock.Requests) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(mock.Requests))
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	fail := &StatusError{Provider: "mock", StatusCode: http.StatusServiceUnavailable}
	mock := &MockProvider{Errors: []error{fail, fail, fail, fail}}
	client := NewClient(mock, WithMaxRetries(2), WithSleeper(func(time.Duration) {}))

	_, err := client.Generate(context.Background(), GenerateRequest{User: "u"})
	if err == nil {
		t.Fatal("Expected error after retries")
	}
	if !errors.Is(err, fail) {
		t.Errorf("Expected wrapped StatusError, got %v", err)
	}
	if len(mock.Requests) != 3 {
		t.Errorf("Expected 3 attempts (1 + 2 retries), got %d", len(mock.Requests))
	}
}

func TestClient_CacheHit(t *testing.T) {
	mock := &MockProvider{Responses: []string{"first", "second"}}
	metrics := telemetry.NewMetrics()
	client := NewClient(mock,
		WithCache(cache.NewMemoryCache(time.Hour, time.Minute), 0),
		WithMetrics(metrics),
	)

	req := GenerateRequest{System: "s", User: "u", Model: "m", Temperature: 0.2}
	first, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(mock.Requests) != 1 {
		t.Errorf("Expected provider to be called once, got %d", len(mock.Requests))
	}
	if first.Cached || !second.Cached {
		t.Errorf("Expected only second response to be cached: %v %v", first.Cached, second.Cached)
	}
	if second.Text != "first" {
		t.Errorf("Expected cached text 'first', got %q", second.Text)
	}
	if got := testutil.ToFloat64(metrics.LLMCacheHitsTotal); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}
}

func TestClient_SampleIndexSeparatesCacheEntries(t *testing.T) {
	mock := &MockProvider{Responses: []string{"70", "75", "80"}}
	client := NewClient(mock, WithCache(cache.NewMemoryCache(time.Hour, time.Minute), 0))

	for i := 0; i < 3; i++ {
		req := GenerateRequest{User: "same", Temperature: 0.7, Sample: i}
		if _, err := client.Generate(context.Background(), req); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
	}
	if len(mock.Requests) != 3 {
		t.Errorf("Expected 3 distinct provider calls, got %d", len(mock.Requests))
	}
}

func TestClient_ContextCanceledStopsRetries(t *testing.T) {
	mock := &MockProvider{Errors: []error{context.Canceled}}
	client := NewClient(mock, WithSleeper(func(time.Duration) {}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Generate(ctx, GenerateRequest{User: "u"}); err == nil {
		t.Fatal("Expected error for canceled context")
	}
	if len(mock.Requests) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(mock.Requests))
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := ParseRetryAfter("5"); !ok || d != 5*time.Second {
		t.Errorf("Expected 5s, got %v %v", d, ok)
	}
	if _, ok := ParseRetryAfter("-1"); ok {
		t.Error("Expected negative seconds to be rejected")
	}
	if _, ok := ParseRetryAfter(""); ok {
		t.Error("Expected empty header to be rejected")
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if d, ok := ParseRetryAfter(future); !ok || d <= 0 {
		t.Errorf("Expected positive delay for HTTP date, got %v %v", d, ok)
	}
}
