package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and records nothing.
//
// Metrics:
//   - concordia_llm_requests_total{provider,outcome} - model calls by outcome (ok, error, retry)
//   - concordia_llm_cache_hits_total - responses served from the cache
//   - concordia_normalizer_fallbacks_total{kind} - model outputs replaced by defaults
//   - concordia_records_written_total{stage} - output log lines appended
type Metrics struct {
	Registry *prometheus.Registry

	LLMRequestsTotal         *prometheus.CounterVec
	LLMCacheHitsTotal        prometheus.Counter
	NormalizerFallbacksTotal *prometheus.CounterVec
	RecordsWrittenTotal      *prometheus.CounterVec
}

// NewMetrics creates the counters on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordia_llm_requests_total",
				Help: "Total number of model requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		LLMCacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "concordia_llm_cache_hits_total",
				Help: "Total number of model responses served from cache",
			},
		),
		NormalizerFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordia_normalizer_fallbacks_total",
				Help: "Total number of unparseable model outputs replaced by defaults",
			},
			[]string{"kind"}, // "extraction", "judgment", "score"
		),
		RecordsWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "concordia_records_written_total",
				Help: "Total number of records appended to output logs",
			},
			[]string{"stage"},
		),
	}
}

// LLMRequest counts one model call
func (m *Metrics) LLMRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(provider, outcome).Inc()
}

// CacheHit counts one cached response
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.LLMCacheHitsTotal.Inc()
}

// Fallback counts one normalizer default substitution
func (m *Metrics) Fallback(kind string) {
	if m == nil {
		return
	}
	m.NormalizerFallbacksTotal.WithLabelValues(kind).Inc()
}

// RecordWritten counts one appended record
func (m *Metrics) RecordWritten(stage string) {
	if m == nil {
		return
	}
	m.RecordsWrittenTotal.WithLabelValues(stage).Inc()
}

// WriteTextfile exports the registry in Prometheus text format (node_exporter textfile collector)
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
