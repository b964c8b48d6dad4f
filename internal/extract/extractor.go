package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/score"
	"github.com/ppiankov/concordia/internal/store"
	"github.com/ppiankov/concordia/internal/telemetry"
)

// Config tunes retrieval and the extraction request
type Config struct {
	MaxWords     int
	OverlapWords int
	TopK         int
	Model        string
	Temperature  float64
	MaxTokens    int
}

// ConfigFromModel converts the runtime configuration
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		MaxWords:     cfg.Retrieval.MaxWords,
		OverlapWords: cfg.Retrieval.OverlapWords,
		TopK:         cfg.Retrieval.TopK,
		Model:        cfg.LLM.Model,
		Temperature:  cfg.Extraction.Temperature,
		MaxTokens:    cfg.LLM.MaxTokens,
	}
}

// Validate checks the retrieval window
func (c Config) Validate() error {
	if c.MaxWords <= 0 || c.OverlapWords < 0 || c.OverlapWords >= c.MaxWords {
		return fmt.Errorf("%w: max_words=%d overlap_words=%d", ErrInvalidWindow, c.MaxWords, c.OverlapWords)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	return nil
}

// Key identifies one (document, event) pair
type Key struct {
	DocID string
	Event string
}

// DoneKeys returns the pairs already present in a claims log
func DoneKeys(records []model.ClaimRecord) map[Key]bool {
	done := make(map[Key]bool, len(records))
	for _, r := range records {
		done[Key{DocID: r.DocID, Event: r.Event}] = true
	}
	return done
}

// Summary counts the outcome of one extraction run
type Summary struct {
	Documents int // Documents processed successfully
	Failed    int
	Records   int // Records appended
	Resumed   int // Pairs skipped because the log already had them
}

// Extractor turns documents into claim records, one per relevant event
type Extractor struct {
	provider llm.Provider
	registry *events.Registry
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

// NewExtractor creates a new extractor
func NewExtractor(provider llm.Provider, registry *events.Registry, cfg Config, opts ...Option) *Extractor {
	e := &Extractor{
		provider: provider,
		registry: registry,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractDocument runs every registered event against one document.
// Events with no relevant chunk, or listed in done, produce no record.
// Any model failure fails the whole document.
func (e *Extractor) ExtractDocument(ctx context.Context, doc model.Document, done map[Key]bool) ([]model.ClaimRecord, error) {
	chunks, err := Chunk(doc.Content, e.config.MaxWords, e.config.OverlapWords)
	if err != nil {
		return nil, err
	}
	source := model.ClassifySource(doc.ID)

	var records []model.ClaimRecord
	for _, event := range e.registry.All() {
		if done[Key{DocID: doc.ID, Event: event.ID}] {
			continue
		}

		ranked := score.NewScorer(event.Keywords).Rank(chunks, e.config.TopK)
		if len(ranked) == 0 {
			continue
		}

		system, user := BuildPrompt(event, JoinContext(ranked))
		resp, err := e.provider.Generate(ctx, llm.GenerateRequest{
			System:      system,
			User:        user,
			Model:       e.config.Model,
			Temperature: e.config.Temperature,
			MaxTokens:   e.config.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", event.ID, err)
		}

		ext, ok := NormalizeExtraction(resp.Text)
		if !ok {
			e.metrics.Fallback("extraction")
			e.logger.Warn("unparseable extraction output, using defaults",
				zap.String("doc_id", doc.ID),
				zap.String("event", event.ID),
				zap.String("snippet", llm.Snippet(resp.Text)))
		}

		records = append(records, model.ClaimRecord{
			Event:           event.ID,
			EventName:       event.Name,
			DocID:           doc.ID,
			Source:          source,
			DocumentTitle:   doc.Title,
			Claims:          ext.Claims,
			TemporalDetails: ext.TemporalDetails,
			Tone:            ext.Tone,
		})
	}
	return records, nil
}

// Run processes documents in order and appends their records to out.
// A failing document is logged and skipped; only cancellation or a write
// failure stops the run.
func (e *Extractor) Run(ctx context.Context, docs []model.Document, out store.Appender, done map[Key]bool) (Summary, error) {
	var sum Summary
	if err := e.config.Validate(); err != nil {
		return sum, err
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		e.logger.Info("processing document",
			zap.Int("n", i+1),
			zap.Int("total", len(docs)),
			zap.String("doc_id", doc.ID),
			zap.String("title", doc.Title))

		for _, event := range e.registry.IDs() {
			if done[Key{DocID: doc.ID, Event: event}] {
				sum.Resumed++
			}
		}

		records, err := e.ExtractDocument(ctx, doc, done)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			sum.Failed++
			e.logger.Error("document failed", zap.String("doc_id", doc.ID), zap.Error(err))
			continue
		}

		for _, rec := range records {
			if err := out.Append(rec); err != nil {
				return sum, fmt.Errorf("append record: %w", err)
			}
			sum.Records++
			e.metrics.RecordWritten("extract")
		}
		sum.Documents++
	}
	return sum, nil
}

// JoinContext concatenates ranked chunks with the visible separator
func JoinContext(ranked []score.Scored) string {
	texts := make([]string, len(ranked))
	for i, r := range ranked {
		texts[i] = r.Text
	}
	return strings.Join(texts, ContextSeparator)
}
