package judge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/concordia/internal/aggregate"
	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/store"
	"github.com/ppiankov/concordia/internal/telemetry"
)

// Config tunes the judge request
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ConfigFromModel converts the runtime configuration
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.Judge.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
}

// Summary counts the outcome of one judge run
type Summary struct {
	Judged  int
	Failed  int
	Resumed int
	Skipped int // Groups with no lincoln or other claims
}

// Judge compares lincoln-side and other-side claims per event
type Judge struct {
	provider llm.Provider
	registry *events.Registry
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// Option configures a Judge
type Option func(*Judge)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(j *Judge) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *telemetry.Metrics) Option {
	return func(j *Judge) {
		j.metrics = m
	}
}

// NewJudge creates a new consistency judge
func NewJudge(provider llm.Provider, registry *events.Registry, cfg Config, opts ...Option) *Judge {
	j := &Judge{
		provider: provider,
		registry: registry,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RequestFor builds the comparison request for one group
func RequestFor(grp *aggregate.Group, registry *events.Registry) Request {
	var description string
	if registry != nil {
		if ev, ok := registry.Get(grp.Event); ok {
			description = ev.Description
		}
	}
	return Request{
		EventID:       grp.Event,
		EventName:     grp.EventName,
		Description:   description,
		LincolnClaims: grp.Lincoln.Claims,
		OtherClaims:   grp.Other.Claims,
	}
}

// Evaluate judges one group and enriches the result with grouping metadata
func (j *Judge) Evaluate(ctx context.Context, grp *aggregate.Group) (model.Judgment, error) {
	system, user := BuildPrompt(RequestFor(grp, j.registry))

	resp, err := j.provider.Generate(ctx, llm.GenerateRequest{
		System:      system,
		User:        user,
		Model:       j.config.Model,
		Temperature: j.config.Temperature,
		MaxTokens:   j.config.MaxTokens,
	})
	if err != nil {
		return model.Judgment{}, err
	}

	judgment, ok := NormalizeJudgment(resp.Text, grp.Event)
	if !ok {
		j.metrics.Fallback("judgment")
		j.logger.Warn("unparseable judge output, using defaults",
			zap.String("event", grp.Event),
			zap.String("snippet", llm.Snippet(resp.Text)))
	}

	judgment.Event = grp.Event
	judgment.EventName = grp.EventName
	judgment.LincolnDocIDs = grp.Lincoln.DocIDs
	judgment.OtherDocIDs = grp.Other.DocIDs
	judgment.LincolnClaimCount = len(grp.Lincoln.Claims)
	judgment.OtherClaimCount = len(grp.Other.Claims)
	judgment.UnknownClaimCount = len(grp.Unknown.Claims)
	return judgment, nil
}

// Run judges every evaluable group not already in done and appends the results
func (j *Judge) Run(ctx context.Context, grouped *aggregate.Grouped, out store.Appender, done map[string]bool) (Summary, error) {
	var sum Summary

	for _, grp := range grouped.Groups {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if !grp.Evaluable() {
			sum.Skipped++
			continue
		}
		if done[grp.Event] {
			sum.Resumed++
			continue
		}

		j.logger.Info("evaluating event", zap.String("event", grp.Event), zap.String("event_name", grp.EventName))

		judgment, err := j.Evaluate(ctx, grp)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			j.logger.Error("event failed", zap.String("event", grp.Event), zap.Error(err))
			continue
		}

		if err := out.Append(judgment); err != nil {
			return sum, fmt.Errorf("append judgment: %w", err)
		}
		j.metrics.RecordWritten("judge")
		sum.Judged++
	}
	return sum, nil
}

// DoneEvents returns the events already present in a judgment log
func DoneEvents(judgments []model.Judgment) map[string]bool {
	done := make(map[string]bool, len(judgments))
	for _, jd := range judgments {
		done[jd.Event] = true
	}
	return done
}
