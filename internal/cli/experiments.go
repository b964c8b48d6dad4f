package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/concordia/internal/experiment"
	"github.com/ppiankov/concordia/internal/model"
)

// experimentsCmd represents the experiments command
var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "Run the judge robustness experiments",
	Long: `Experiments measures how stable the consistency judgments are:

- prompt-robustness: score every event under zero-shot, chain-of-thought
  and few-shot prompts
- self-consistency: sample the chain-of-thought prompt repeatedly at a
  higher temperature and summarize the spread
- inter-rater: treat each strategy as a rater and summarize the dispersion
  of their scores per event
- kappa: bin scores into high/medium/low and compute Cohen's kappa for
  each pair of strategies

Without a subcommand all four run in order.

Example:
  concordia experiments
  concordia experiments self-consistency
  concordia experiments kappa`,
	Args: cobra.NoArgs,
	RunE: runExperiments,
}

var promptRobustnessCmd = &cobra.Command{
	Use:   "prompt-robustness",
	Short: "Score every event under each prompting strategy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			banner("Concordia Prompt Robustness")
			sum, err := a.pipeline.PromptRobustness(ctx)
			if err != nil {
				return fmt.Errorf("prompt robustness: %w", err)
			}
			printExperiment("Prompt robustness", sum, a.cfg.Paths.PromptRobustness)
			return nil
		})
	},
}

var selfConsistencyCmd = &cobra.Command{
	Use:   "self-consistency",
	Short: "Sample the reasoning prompt repeatedly per event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			banner("Concordia Self-Consistency")
			field("Runs", a.cfg.Experiments.SelfConsistencyRuns)
			field("Temperature", a.cfg.Experiments.SelfConsistencyTemperature)
			fmt.Fprintf(os.Stderr, "\n")
			sum, err := a.pipeline.SelfConsistency(ctx)
			if err != nil {
				return fmt.Errorf("self-consistency: %w", err)
			}
			printExperiment("Self-consistency", sum, a.cfg.Paths.SelfConsistency)
			return nil
		})
	},
}

var interRaterCmd = &cobra.Command{
	Use:   "inter-rater",
	Short: "Summarize strategy score dispersion per event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			records, err := a.pipeline.InterRater()
			if err != nil {
				return fmt.Errorf("inter-rater: %w", err)
			}
			printInterRater(records, a.cfg.Paths.InterRater)
			return nil
		})
	},
}

var kappaCmd = &cobra.Command{
	Use:   "kappa",
	Short: "Compute Cohen's kappa between prompting strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			rec, err := a.pipeline.Kappa()
			if err != nil {
				return fmt.Errorf("kappa: %w", err)
			}
			printKappa(rec, a.cfg.Paths.Kappa)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(experimentsCmd)
	experimentsCmd.AddCommand(promptRobustnessCmd)
	experimentsCmd.AddCommand(selfConsistencyCmd)
	experimentsCmd.AddCommand(interRaterCmd)
	experimentsCmd.AddCommand(kappaCmd)
}

func runExperiments(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		banner("Concordia Robustness Experiments")
		field("Claims", a.cfg.Paths.Claims)
		field("Model", fmt.Sprintf("%s/%s", a.cfg.LLM.Provider, a.cfg.LLM.Model))
		field("Sampling runs", a.cfg.Experiments.SelfConsistencyRuns)
		fmt.Fprintf(os.Stderr, "\n")

		sum, err := a.pipeline.Experiments(ctx)
		if err != nil {
			return err
		}

		banner("Experiments Complete")
		printExperiment("Prompt robustness", sum.PromptRobustness, a.cfg.Paths.PromptRobustness)
		printExperiment("Self-consistency", sum.SelfConsistency, a.cfg.Paths.SelfConsistency)
		printInterRater(sum.InterRater, a.cfg.Paths.InterRater)
		printKappa(sum.Kappa, a.cfg.Paths.Kappa)
		return nil
	})
}

func printExperiment(name string, sum experiment.Summary, path string) {
	status(sum.Failed == 0, "%s: %d written, %d failed, %d resumed -> %s",
		name, sum.Written, sum.Failed, sum.Resumed, path)
}

func printInterRater(records []model.InterRater, path string) {
	if records == nil {
		status(false, "Inter-rater: skipped (no prompt robustness results)")
		return
	}
	status(true, "Inter-rater: %d events -> %s", len(records), path)
}

func printKappa(rec *model.KappaInterRater, path string) {
	if rec == nil {
		status(false, "Kappa: skipped (no events scored by all three strategies)")
		return
	}
	status(true, "Kappa over %d events -> %s", len(rec.Events), path)
	for _, pair := range experiment.KappaPairs {
		fmt.Fprintf(os.Stderr, "    %-12s %.3f\n", pair.Name, rec.Kappa[pair.Name])
	}
}
