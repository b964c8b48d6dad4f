package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/concordia/internal/pipeline"
	"github.com/ppiankov/concordia/internal/store"
)

var csvOutput bool

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show judge and experiment results as tables",
	Long: `Report renders the consistency judgments, strategy dispersion,
self-consistency statistics and kappa agreement from the output logs.
Tables are drawn on a terminal and written as CSV otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			rep, err := a.pipeline.LoadReport()
			if err != nil {
				return err
			}
			renderer(csvOutput).RenderReport(rep)
			return nil
		})
	},
}

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the event registry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			renderer(csvOutput).RenderEvents(a.registry)
			return nil
		})
	},
}

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [corpus.jsonl...]",
	Short: "Check required fields in corpus files",
	Long: `Validate counts non-empty values for every required document field and
lists records missing a key. Without arguments the configured corpora are
checked. Exits with an error when any record is missing a key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			paths := args
			if len(paths) == 0 {
				paths = a.cfg.Paths.Corpora
			}

			r := renderer(csvOutput)
			incomplete := 0
			for _, path := range paths {
				cov, err := store.CheckCoverage(path)
				if err != nil {
					return err
				}
				r.RenderCoverage(cov)
				status(cov.OK(), "%s: %d records", path, cov.Total)
				if !cov.OK() {
					incomplete++
				}
			}
			if incomplete > 0 {
				return fmt.Errorf("%d of %d corpus files have records with missing keys", incomplete, len(paths))
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(validateCmd)
	for _, cmd := range []*cobra.Command{reportCmd, eventsCmd, validateCmd} {
		cmd.Flags().BoolVar(&csvOutput, "csv", false, "always write CSV")
	}
}

func renderer(csv bool) *pipeline.Renderer {
	if csv {
		return pipeline.NewCSVRenderer(os.Stdout)
	}
	return pipeline.NewRenderer(os.Stdout)
}
