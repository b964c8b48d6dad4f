package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/concordia/internal/ingest"
	"github.com/ppiankov/concordia/internal/store"
)

func (p *Pipeline) downloader(force bool) *ingest.Downloader {
	return ingest.NewDownloader(ingest.NewFetcher(p.config.Ingest), p.config.Ingest.RawDir,
		ingest.WithLogger(p.logger),
		ingest.WithForce(force))
}

// FetchGutenberg downloads the configured books' plain text
func (p *Pipeline) FetchGutenberg(ctx context.Context, force bool) ([]ingest.Outcome, error) {
	return p.downloader(force).DownloadGutenberg(ctx, p.config.Ingest.GutenbergBooks)
}

// FetchLoC downloads the configured Library of Congress items
func (p *Pipeline) FetchLoC(ctx context.Context, force bool) ([]ingest.Outcome, error) {
	return p.downloader(force).DownloadLoC(ctx, p.config.Ingest.LoCItems)
}

// NormalizeGutenberg rewrites the Gutenberg corpus from the raw downloads
func (p *Pipeline) NormalizeGutenberg() (int, error) {
	docs, err := ingest.NormalizeGutenberg(p.config.Ingest.RawDir, p.config.Ingest.GutenbergBooks)
	if err != nil {
		return 0, err
	}
	if err := store.WriteAll(p.config.Ingest.GutenbergOut, docs); err != nil {
		return 0, fmt.Errorf("write corpus: %w", err)
	}
	return len(docs), nil
}

// NormalizeLoC rewrites the cleaned and completed LoC corpus from the raw downloads
func (p *Pipeline) NormalizeLoC() (ingest.LoCStats, error) {
	docs, stats, err := ingest.NormalizeLoC(p.config.Ingest.RawDir, p.config.Ingest.LoCItems, p.logger)
	if err != nil {
		return stats, err
	}
	if err := store.WriteAll(p.config.Ingest.LoCOut, docs); err != nil {
		return stats, fmt.Errorf("write corpus: %w", err)
	}
	return stats, nil
}
