package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/concordia/internal/aggregate"
	"github.com/ppiankov/concordia/internal/cache"
	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/experiment"
	"github.com/ppiankov/concordia/internal/extract"
	"github.com/ppiankov/concordia/internal/judge"
	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/store"
	"github.com/ppiankov/concordia/internal/telemetry"
)

// ErrNoProvider is returned when a model stage runs with the provider disabled
var ErrNoProvider = errors.New("no LLM provider configured")

// Pipeline orchestrates the stages: each reads its inputs from disk, calls
// the model where needed and writes its output log
type Pipeline struct {
	config   *model.Config
	registry *events.Registry
	provider llm.Provider // Built on first use unless injected
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *telemetry.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithProvider replaces the configured provider
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) {
		p.provider = provider
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, registry *events.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:   cfg,
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewClient builds the configured provider wrapped with caching, rate
// limiting and retries
func NewClient(cfg *model.Config, logger *zap.Logger, metrics *telemetry.Metrics) (*llm.Client, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return nil, ErrNoProvider
	}

	return llm.NewClient(provider,
		llm.WithCache(cache.FromConfig(cfg.Cache), cfg.Cache.DiskTTL),
		llm.WithRateLimit(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst),
		llm.WithMaxRetries(cfg.LLM.MaxRetries),
		llm.WithLogger(logger),
		llm.WithMetrics(metrics),
	), nil
}

func (p *Pipeline) client() (llm.Provider, error) {
	if p.provider != nil {
		return p.provider, nil
	}
	c, err := NewClient(p.config, p.logger, p.metrics)
	if err != nil {
		return nil, err
	}
	p.provider = c
	return c, nil
}

// resumeFrom returns the records already in an output log, or none when
// the run is fresh or the log does not exist yet
func resumeFrom[T any](path string, fresh bool) ([]T, error) {
	if fresh || !store.Exists(path) {
		return nil, nil
	}
	records, err := store.ReadJSONL[T](path)
	if err != nil {
		return nil, fmt.Errorf("read existing output: %w", err)
	}
	return records, nil
}

// Extract runs the event claim extractor over every configured corpus
func (p *Pipeline) Extract(ctx context.Context) (extract.Summary, error) {
	cfg := extract.ConfigFromModel(p.config)
	if err := cfg.Validate(); err != nil {
		return extract.Summary{}, err
	}

	docs, err := store.LoadDocuments(p.config.Paths.Corpora...)
	if err != nil {
		return extract.Summary{}, fmt.Errorf("load corpora: %w", err)
	}
	p.logger.Info("loaded documents", zap.Int("count", len(docs)))

	path := p.config.Paths.Claims
	prior, err := resumeFrom[model.ClaimRecord](path, p.config.Output.Fresh)
	if err != nil {
		return extract.Summary{}, err
	}

	provider, err := p.client()
	if err != nil {
		return extract.Summary{}, err
	}

	out, err := store.OpenLog(path, p.config.Output.Fresh)
	if err != nil {
		return extract.Summary{}, err
	}
	defer p.closeLog(out)

	ex := extract.NewExtractor(provider, p.registry, cfg,
		extract.WithLogger(p.logger),
		extract.WithMetrics(p.metrics))
	return ex.Run(ctx, docs, out, extract.DoneKeys(prior))
}

// Groups loads the claims log and groups it by event and source
func (p *Pipeline) Groups() (*aggregate.Grouped, error) {
	records, err := store.ReadJSONL[model.ClaimRecord](p.config.Paths.Claims)
	if err != nil {
		return nil, fmt.Errorf("load claims: %w", err)
	}
	return aggregate.GroupClaims(records, p.registry), nil
}

// Judge compares the two sides of every evaluable event
func (p *Pipeline) Judge(ctx context.Context) (judge.Summary, error) {
	grouped, err := p.Groups()
	if err != nil {
		return judge.Summary{}, err
	}

	path := p.config.Paths.Consistency
	prior, err := resumeFrom[model.Judgment](path, p.config.Output.Fresh)
	if err != nil {
		return judge.Summary{}, err
	}

	provider, err := p.client()
	if err != nil {
		return judge.Summary{}, err
	}

	out, err := store.OpenLog(path, p.config.Output.Fresh)
	if err != nil {
		return judge.Summary{}, err
	}
	defer p.closeLog(out)

	j := judge.NewJudge(provider, p.registry, judge.ConfigFromModel(p.config),
		judge.WithLogger(p.logger),
		judge.WithMetrics(p.metrics))
	return j.Run(ctx, grouped, out, judge.DoneEvents(prior))
}

// closeLog releases an output log and reports what this run appended to it
func (p *Pipeline) closeLog(out *store.LogWriter) {
	if err := out.Close(); err != nil {
		p.logger.Warn("closing output log", zap.String("path", out.Path()), zap.Error(err))
	}
	p.logger.Info("output log written", zap.String("path", out.Path()), zap.Int("appended", out.Count()))
}

func (p *Pipeline) runner() (*experiment.Runner, error) {
	provider, err := p.client()
	if err != nil {
		return nil, err
	}
	return experiment.NewRunner(provider, p.registry, experiment.ConfigFromModel(p.config),
		experiment.WithLogger(p.logger),
		experiment.WithMetrics(p.metrics)), nil
}

// PromptRobustness scores every evaluable event under each prompting strategy
func (p *Pipeline) PromptRobustness(ctx context.Context) (experiment.Summary, error) {
	grouped, err := p.Groups()
	if err != nil {
		return experiment.Summary{}, err
	}

	path := p.config.Paths.PromptRobustness
	prior, err := resumeFrom[model.StrategyScore](path, p.config.Output.Fresh)
	if err != nil {
		return experiment.Summary{}, err
	}

	r, err := p.runner()
	if err != nil {
		return experiment.Summary{}, err
	}

	out, err := store.OpenLog(path, p.config.Output.Fresh)
	if err != nil {
		return experiment.Summary{}, err
	}
	defer p.closeLog(out)

	return r.PromptRobustness(ctx, grouped, out, experiment.DoneStrategies(prior))
}

// SelfConsistency samples the reasoning prompt repeatedly per evaluable event
func (p *Pipeline) SelfConsistency(ctx context.Context) (experiment.Summary, error) {
	grouped, err := p.Groups()
	if err != nil {
		return experiment.Summary{}, err
	}

	path := p.config.Paths.SelfConsistency
	prior, err := resumeFrom[model.SelfConsistency](path, p.config.Output.Fresh)
	if err != nil {
		return experiment.Summary{}, err
	}

	r, err := p.runner()
	if err != nil {
		return experiment.Summary{}, err
	}

	out, err := store.OpenLog(path, p.config.Output.Fresh)
	if err != nil {
		return experiment.Summary{}, err
	}
	defer p.closeLog(out)

	return r.SelfConsistency(ctx, grouped, out, experiment.DoneSelfConsistency(prior))
}

// strategyScores reads the prompt-robustness log. ok is false when the log
// does not exist yet.
func (p *Pipeline) strategyScores() (rows []model.StrategyScore, ok bool, err error) {
	rows, err = store.ReadJSONL[model.StrategyScore](p.config.Paths.PromptRobustness)
	if errors.Is(err, store.ErrInputMissing) {
		p.logger.Warn("prompt robustness results not found, skipping",
			zap.String("path", p.config.Paths.PromptRobustness))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rows, true, nil
}

// InterRater rewrites the dispersion summary from the prompt-robustness log.
// It returns nil without error when that log is missing.
func (p *Pipeline) InterRater() ([]model.InterRater, error) {
	rows, ok, err := p.strategyScores()
	if err != nil || !ok {
		return nil, err
	}

	records := experiment.InterRater(rows)
	if err := store.WriteAll(p.config.Paths.InterRater, records); err != nil {
		return nil, fmt.Errorf("write inter-rater: %w", err)
	}
	for range records {
		p.metrics.RecordWritten("inter_rater")
	}
	return records, nil
}

// Kappa rewrites the agreement record from the prompt-robustness log. It
// returns nil without error when the log is missing or no event has all
// three strategy scores; in the latter case any earlier kappa log is removed.
func (p *Pipeline) Kappa() (*model.KappaInterRater, error) {
	rows, ok, err := p.strategyScores()
	if err != nil || !ok {
		return nil, err
	}

	rec, ok := experiment.Kappa(rows)
	if !ok {
		p.logger.Warn("no events with all three strategies, skipping kappa")
		if err := store.Remove(p.config.Paths.Kappa); err != nil {
			return nil, fmt.Errorf("remove stale kappa: %w", err)
		}
		return nil, nil
	}
	if err := store.WriteAll(p.config.Paths.Kappa, []model.KappaInterRater{rec}); err != nil {
		return nil, fmt.Errorf("write kappa: %w", err)
	}
	p.metrics.RecordWritten("kappa")
	return &rec, nil
}

// ExperimentsSummary collects the outcome of every robustness experiment
type ExperimentsSummary struct {
	PromptRobustness experiment.Summary
	SelfConsistency  experiment.Summary
	InterRater       []model.InterRater
	Kappa            *model.KappaInterRater // nil when skipped
}

// Experiments runs prompt robustness, self-consistency, inter-rater and kappa in order
func (p *Pipeline) Experiments(ctx context.Context) (ExperimentsSummary, error) {
	var sum ExperimentsSummary
	var err error

	if sum.PromptRobustness, err = p.PromptRobustness(ctx); err != nil {
		return sum, fmt.Errorf("prompt robustness: %w", err)
	}
	if sum.SelfConsistency, err = p.SelfConsistency(ctx); err != nil {
		return sum, fmt.Errorf("self-consistency: %w", err)
	}
	if sum.InterRater, err = p.InterRater(); err != nil {
		return sum, fmt.Errorf("inter-rater: %w", err)
	}
	if sum.Kappa, err = p.Kappa(); err != nil {
		return sum, fmt.Errorf("kappa: %w", err)
	}
	return sum, nil
}
