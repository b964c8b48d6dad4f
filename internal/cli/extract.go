package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract event claims from the normalized corpora",
	Long: `Extract splits every document into overlapping word windows, ranks the
windows by keyword relevance for each registered event, and asks the model
for the claims, temporal details and tone in the top passages.

One record per (document, event) pair with a relevant passage is appended
to the claims log. Pairs already in the log are skipped unless --fresh.

Example:
  concordia extract
  concordia extract --provider anthropic --model claude-3-5-haiku-latest
  concordia extract --fresh`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		banner("Concordia Claim Extraction")
		field("Corpora", strings.Join(a.cfg.Paths.Corpora, ", "))
		field("Events", a.registry.Len())
		field("Output", a.cfg.Paths.Claims)
		field("Model", fmt.Sprintf("%s/%s", a.cfg.LLM.Provider, a.cfg.LLM.Model))
		fmt.Fprintf(os.Stderr, "\n")

		sum, err := a.pipeline.Extract(ctx)
		if err != nil {
			return fmt.Errorf("extract: %w", err)
		}

		banner("Extraction Complete")
		field("Documents", sum.Documents)
		field("Failed", sum.Failed)
		field("Records", sum.Records)
		field("Resumed", sum.Resumed)
		fmt.Fprintf(os.Stderr, "\n")
		status(sum.Failed == 0, "Wrote %d records to %s", sum.Records, a.cfg.Paths.Claims)
		return nil
	})
}
