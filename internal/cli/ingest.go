package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/concordia/internal/ingest"
)

var force bool

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download raw source documents",
	Long: `Fetch downloads the raw corpus into the raw data directory. Requests
honor robots.txt, are rate limited per host and retried on transient
failures. Files already on disk are skipped unless --force.`,
}

var fetchGutenbergCmd = &cobra.Command{
	Use:   "gutenberg",
	Short: "Download the configured Project Gutenberg books as plain text",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			banner("Concordia Fetch: Project Gutenberg")
			field("Books", len(a.cfg.Ingest.GutenbergBooks))
			field("Raw dir", a.cfg.Ingest.RawDir)
			fmt.Fprintf(os.Stderr, "\n")

			outcomes, err := a.pipeline.FetchGutenberg(ctx, force)
			printOutcomes(outcomes)
			return err
		})
	},
}

var fetchLoCCmd = &cobra.Command{
	Use:   "loc",
	Short: "Download the configured Library of Congress items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			banner("Concordia Fetch: Library of Congress")
			field("Items", len(a.cfg.Ingest.LoCItems))
			field("Raw dir", a.cfg.Ingest.RawDir)
			fmt.Fprintf(os.Stderr, "\n")

			outcomes, err := a.pipeline.FetchLoC(ctx, force)
			printOutcomes(outcomes)
			return err
		})
	},
}

// normalizeCmd represents the normalize command
var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Convert raw downloads into corpus records",
}

var normalizeGutenbergCmd = &cobra.Command{
	Use:   "gutenberg",
	Short: "Strip Gutenberg boilerplate and write the Gutenberg corpus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			n, err := a.pipeline.NormalizeGutenberg()
			if err != nil {
				return fmt.Errorf("normalize gutenberg: %w", err)
			}
			status(true, "Wrote %d records to %s", n, a.cfg.Ingest.GutenbergOut)
			return nil
		})
	},
}

var normalizeLoCCmd = &cobra.Command{
	Use:   "loc",
	Short: "Clean and complete LoC items and write the LoC corpus",
	Long: `Normalize LoC reads each raw item (exhibit HTML or JSON), collects its
transcription text, strips XML and HTML markup, merges the curated metadata
from ingest.loc_items into empty fields, and guesses a missing date or place
from the first line that names a month.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			stats, err := a.pipeline.NormalizeLoC()
			if err != nil {
				return fmt.Errorf("normalize loc: %w", err)
			}
			status(stats.Failed == 0, "Wrote %d records to %s", stats.Total, a.cfg.Ingest.LoCOut)
			field("Failed", stats.Failed)
			field("Empty content", stats.EmptyContent)
			field("Dates filled", stats.DatesFilled)
			field("Places filled", stats.PlacesFilled)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.AddCommand(fetchGutenbergCmd)
	fetchCmd.AddCommand(fetchLoCCmd)
	fetchCmd.PersistentFlags().BoolVar(&force, "force", false, "re-download files that already exist")

	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.AddCommand(normalizeGutenbergCmd)
	normalizeCmd.AddCommand(normalizeLoCCmd)
}

func printOutcomes(outcomes []ingest.Outcome) {
	saved, skipped, failed := 0, 0, 0
	for _, out := range outcomes {
		switch {
		case out.Err != nil:
			failed++
			status(false, "%s: %v", out.ID, out.Err)
		case out.Skipped:
			skipped++
			status(true, "%s: already downloaded", out.ID)
		default:
			saved++
			status(true, "%s -> %s", out.ID, out.Path)
		}
	}
	fmt.Fprintf(os.Stderr, "\n")
	field("Saved", saved)
	field("Skipped", skipped)
	field("Failures", failed)
	fmt.Fprintf(os.Stderr, "\n")
}
