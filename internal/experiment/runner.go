package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/concordia/internal/aggregate"
	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/judge"
	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/stats"
	"github.com/ppiankov/concordia/internal/store"
	"github.com/ppiankov/concordia/internal/telemetry"
)

// Config tunes the experiment requests
type Config struct {
	Model                      string
	MaxTokens                  int
	Temperature                float64 // Prompt robustness
	SelfConsistencyRuns        int
	SelfConsistencyTemperature float64
}

// ConfigFromModel converts the runtime configuration
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Model:                      cfg.LLM.Model,
		MaxTokens:                  cfg.LLM.MaxTokens,
		Temperature:                cfg.Experiments.Temperature,
		SelfConsistencyRuns:        cfg.Experiments.SelfConsistencyRuns,
		SelfConsistencyTemperature: cfg.Experiments.SelfConsistencyTemperature,
	}
}

// StrategyKey identifies one prompt-robustness record
type StrategyKey struct {
	Event    string
	Strategy model.Strategy
}

// DoneStrategies returns the (event, strategy) pairs already scored
func DoneStrategies(scores []model.StrategyScore) map[StrategyKey]bool {
	done := make(map[StrategyKey]bool, len(scores))
	for _, s := range scores {
		done[StrategyKey{Event: s.Event, Strategy: s.Strategy}] = true
	}
	return done
}

// DoneSelfConsistency returns the events already sampled
func DoneSelfConsistency(records []model.SelfConsistency) map[string]bool {
	done := make(map[string]bool, len(records))
	for _, r := range records {
		done[r.Event] = true
	}
	return done
}

// Summary counts the outcome of one experiment run
type Summary struct {
	Written int
	Failed  int
	Resumed int
}

// Runner re-judges grouped claims under varied prompts and sampling
type Runner struct {
	provider llm.Provider
	registry *events.Registry
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a new experiment runner
func NewRunner(provider llm.Provider, registry *events.Registry, cfg Config, opts ...Option) *Runner {
	r := &Runner{
		provider: provider,
		registry: registry,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) score(ctx context.Context, grp *aggregate.Group, strategy model.Strategy, temperature float64, sample int) (int, error) {
	system, user := BuildStrategyPrompt(judge.RequestFor(grp, r.registry), strategy)
	resp, err := r.provider.Generate(ctx, llm.GenerateRequest{
		System:      system,
		User:        user,
		Model:       r.config.Model,
		Temperature: temperature,
		MaxTokens:   r.config.MaxTokens,
		Sample:      sample,
	})
	if err != nil {
		return 0, err
	}

	score, ok := ExtractConsistency(resp.Text)
	if !ok {
		r.metrics.Fallback("score")
		r.logger.Warn("no usable score in output, using default",
			zap.String("event", grp.Event),
			zap.String("strategy", string(strategy)),
			zap.String("snippet", llm.Snippet(resp.Text)))
	}
	return score, nil
}

// PromptRobustness scores every evaluable event once per strategy
func (r *Runner) PromptRobustness(ctx context.Context, grouped *aggregate.Grouped, out store.Appender, done map[StrategyKey]bool) (Summary, error) {
	var sum Summary

	for _, grp := range grouped.Evaluable() {
		r.logger.Info("prompt robustness", zap.String("event", grp.Event), zap.String("event_name", grp.EventName))

		for _, strategy := range model.Strategies {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			if done[StrategyKey{Event: grp.Event, Strategy: strategy}] {
				sum.Resumed++
				continue
			}

			score, err := r.score(ctx, grp, strategy, r.config.Temperature, 0)
			if err != nil {
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				sum.Failed++
				r.logger.Error("strategy failed",
					zap.String("event", grp.Event),
					zap.String("strategy", string(strategy)),
					zap.Error(err))
				continue
			}

			rec := model.StrategyScore{
				Event:              grp.Event,
				EventName:          grp.EventName,
				Strategy:           strategy,
				OverallConsistency: score,
			}
			if err := out.Append(rec); err != nil {
				return sum, fmt.Errorf("append score: %w", err)
			}
			r.metrics.RecordWritten("prompt_robustness")
			sum.Written++
		}
	}
	return sum, nil
}

// SelfConsistency samples the reasoning-elicited prompt repeatedly per event.
// An event is recorded only when every run succeeds.
func (r *Runner) SelfConsistency(ctx context.Context, grouped *aggregate.Grouped, out store.Appender, done map[string]bool) (Summary, error) {
	var sum Summary
	runs := r.config.SelfConsistencyRuns
	if runs <= 0 {
		return sum, fmt.Errorf("self-consistency runs must be positive, got %d", runs)
	}

	for _, grp := range grouped.Evaluable() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if done[grp.Event] {
			sum.Resumed++
			continue
		}

		r.logger.Info("self-consistency", zap.String("event", grp.Event), zap.Int("runs", runs))

		scores := make([]int, 0, runs)
		var runErr error
		for i := 0; i < runs; i++ {
			score, err := r.score(ctx, grp, model.StrategyCoT, r.config.SelfConsistencyTemperature, i)
			if err != nil {
				runErr = fmt.Errorf("run %d: %w", i+1, err)
				break
			}
			scores = append(scores, score)
		}
		if runErr != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			r.logger.Error("event failed", zap.String("event", grp.Event), zap.Error(runErr))
			continue
		}

		s := stats.Summarize(scores)
		rec := model.SelfConsistency{
			Event:                  grp.Event,
			EventName:              grp.EventName,
			Strategy:               model.StrategyCoT,
			Runs:                   scores,
			Mean:                   s.Mean,
			Min:                    s.Min,
			Max:                    s.Max,
			Std:                    s.Std,
			CoefficientOfVariation: s.CV,
		}
		if err := out.Append(rec); err != nil {
			return sum, fmt.Errorf("append self-consistency: %w", err)
		}
		r.metrics.RecordWritten("self_consistency")
		sum.Written++
	}
	return sum, nil
}
