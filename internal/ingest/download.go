package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Outcome records what happened to one requested item
type Outcome struct {
	ID      string
	Path    string
	Skipped bool // Raw file already present
	Err     error
}

// Downloader saves raw documents under a raw data directory
type Downloader struct {
	fetcher       *Fetcher
	rawDir        string
	force         bool
	gutenbergBase string
	logger        *zap.Logger
}

// Option configures a Downloader
type Option func(*Downloader)

// WithLogger sets the diagnostic logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithForce re-downloads items whose raw file already exists
func WithForce(force bool) Option {
	return func(d *Downloader) {
		d.force = force
	}
}

// WithGutenbergBase overrides the Project Gutenberg site root
func WithGutenbergBase(base string) Option {
	return func(d *Downloader) {
		d.gutenbergBase = base
	}
}

// NewDownloader creates a new downloader
func NewDownloader(fetcher *Fetcher, rawDir string, opts ...Option) *Downloader {
	d := &Downloader{
		fetcher:       fetcher,
		rawDir:        rawDir,
		gutenbergBase: GutenbergBase,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Downloader) exists(path string) bool {
	if d.force {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// writeFileAtomic writes data via a temp file and rename
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// finish logs an outcome; only cancellation aborts the batch
func (d *Downloader) finish(ctx context.Context, out Outcome) (Outcome, error) {
	switch {
	case out.Err != nil:
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		d.logger.Error("download failed", zap.String("id", out.ID), zap.Error(out.Err))
	case out.Skipped:
		d.logger.Info("already downloaded", zap.String("id", out.ID), zap.String("path", out.Path))
	default:
		d.logger.Info("saved", zap.String("id", out.ID), zap.String("path", out.Path))
	}
	return out, nil
}
