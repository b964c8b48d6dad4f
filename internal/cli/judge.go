package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// judgeCmd represents the judge command
var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Judge consistency between Lincoln's claims and other sources",
	Long: `Judge groups the claims log by event and source, then asks the model to
compare what Lincoln's own documents say with what other authors say.

Each judgment carries a 0-100 consistency score, agreement examples, typed
contradictions (factual, interpretive, omission), omissions on each side
and a tone comparison. Events already judged are skipped unless --fresh.

Example:
  concordia judge
  concordia judge --fresh`,
	Args: cobra.NoArgs,
	RunE: runJudge,
}

func init() {
	rootCmd.AddCommand(judgeCmd)
}

func runJudge(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		banner("Concordia Consistency Judge")
		field("Claims", a.cfg.Paths.Claims)
		field("Output", a.cfg.Paths.Consistency)
		field("Model", fmt.Sprintf("%s/%s", a.cfg.LLM.Provider, a.cfg.LLM.Model))
		fmt.Fprintf(os.Stderr, "\n")

		sum, err := a.pipeline.Judge(ctx)
		if err != nil {
			return fmt.Errorf("judge: %w", err)
		}

		banner("Judging Complete")
		field("Judged", sum.Judged)
		field("Failed", sum.Failed)
		field("Resumed", sum.Resumed)
		field("Not evaluable", sum.Skipped)
		fmt.Fprintf(os.Stderr, "\n")
		status(sum.Failed == 0, "Wrote %d judgments to %s", sum.Judged, a.cfg.Paths.Consistency)
		return nil
	})
}
