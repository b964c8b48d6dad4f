package experiment

import (
	"fmt"
	"strings"

	"github.com/ppiankov/concordia/internal/judge"
	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
)

const baseSystem = "You are a careful historical evaluator comparing Abraham Lincoln's own " +
	"claims with those of later authors."

const fewShotExample = `
Example:

Set A (Lincoln):
  - Lincoln says he aims to preserve the Union above all.

Set B (Others):
  - Historians agree Lincoln prioritized Union preservation.

Correct JSON output for this simple example:

{
  "event": "example_event",
  "overall_consistency": 95,
  "agreement_examples": [
    "Both sets affirm Lincoln's primary goal is preserving the Union."
  ],
  "contradictions": [],
  "missing_from_lincoln": "Lincoln does not discuss broader international reactions.",
  "missing_from_others": "Historians do not quote Lincoln's exact phrasing.",
  "tone_comparison": "Both are broadly sympathetic to Lincoln."
}
`

// BuildStrategyPrompt returns the judging instructions for one prompting strategy
func BuildStrategyPrompt(req judge.Request, strategy model.Strategy) (system, user string) {
	system = baseSystem
	example := ""
	switch strategy {
	case model.StrategyCoT:
		system += " Think step by step before producing your final JSON answer."
	case model.StrategyFewShot:
		system += " First study the example of how to compare two claim sets. Then apply the same format."
		example = fewShotExample
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Event: %s (%s)\n\n", req.EventName, req.EventID)
	fmt.Fprintf(&b, "Short description:\n%s\n\n", req.Description)
	if example != "" {
		b.WriteString(example)
		b.WriteString("\n")
	}
	b.WriteString("Now evaluate the REAL data below.\n\n")
	fmt.Fprintf(&b, "Set A: Claims from Abraham Lincoln's own writings\n%s\n\n", judge.FormatClaims(req.LincolnClaims))
	fmt.Fprintf(&b, "Set B: Claims from other authors (historians, biographers, etc.)\n%s\n\n", judge.FormatClaims(req.OtherClaims))
	b.WriteString(`Follow the same JSON format as in the example (where applicable):

- overall_consistency: integer 0-100
- agreement_examples: list of short strings
- contradictions: list of objects with 'description' and 'type' (factual, interpretive, omission)
- missing_from_lincoln: short text
- missing_from_others: short text
- tone_comparison: short text
`)
	return system, b.String()
}

// ExtractConsistency pulls only the clamped overall_consistency from raw output.
// ok is false when the default score was substituted.
func ExtractConsistency(raw string) (score int, ok bool) {
	tree, err := llm.ParseLoose(raw)
	if err != nil {
		return model.DefaultConsistency, false
	}
	if score, ok := llm.CoerceScore(tree["overall_consistency"]); ok {
		return score, true
	}
	return model.DefaultConsistency, false
}
