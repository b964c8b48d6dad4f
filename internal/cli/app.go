package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/logging"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/pipeline"
	"github.com/ppiankov/concordia/internal/telemetry"
)

// app is the per-command runtime: resolved config, logger, metrics and pipeline
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *telemetry.Metrics
	registry *events.Registry
	pipeline *pipeline.Pipeline
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger = logger.With(zap.String("run", uuid.NewString()))

	registry, err := events.Load(cfg.Paths.EventsFile)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	metrics := telemetry.NewMetrics()
	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		registry: registry,
		pipeline: pipeline.NewPipeline(cfg, registry,
			pipeline.WithLogger(logger),
			pipeline.WithMetrics(metrics)),
	}, nil
}

// close exports metrics and flushes the logger
func (a *app) close() {
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.File); err != nil {
		a.logger.Warn("metrics export failed", zap.Error(err))
	}
	_ = logging.Sync(a.logger)
}

// signalContext is cancelled on interrupt so stages stop between model calls
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// withApp builds the runtime, runs fn and tears the runtime down
func withApp(fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := signalContext()
	defer cancel()
	return fn(ctx, a)
}

func banner(title string) {
	rule := strings.Repeat("═", 59)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "  %s\n", title)
	fmt.Fprintf(os.Stderr, "%s\n", rule)
	fmt.Fprintf(os.Stderr, "\n")
}

// field prints one aligned "label: value" line under a banner
func field(label string, value any) {
	fmt.Fprintf(os.Stderr, "  %-18s %v\n", label+":", value)
}

// status prints a ✓ or ✗ line
func status(ok bool, format string, a ...any) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", mark, fmt.Sprintf(format, a...))
}
