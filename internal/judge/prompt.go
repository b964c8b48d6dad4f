package judge

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a careful historical evaluator. Your task is to compare how " +
	"Abraham Lincoln's own writings describe an event versus how later authors " +
	"describe the same event. Be precise and fair. Use ONLY the claims provided."

// Request describes one event's claim sets for comparison
type Request struct {
	EventID       string
	EventName     string
	Description   string
	LincolnClaims []string
	OtherClaims   []string
}

// FormatClaims renders a claim list as indented bullets, or "(none)"
func FormatClaims(claims []string) string {
	if len(claims) == 0 {
		return "  (none)\n"
	}
	lines := make([]string, len(claims))
	for i, c := range claims {
		lines[i] = "  - " + c
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt returns the system and user instructions for the consistency judge
func BuildPrompt(req Request) (system, user string) {
	var b strings.Builder

	fmt.Fprintf(&b, "Event: %s (%s)\n\n", req.EventName, req.EventID)
	fmt.Fprintf(&b, "Short description:\n%s\n\n", req.Description)
	fmt.Fprintf(&b, "Set A: Claims from Abraham Lincoln's own writings\n%s\n\n", FormatClaims(req.LincolnClaims))
	fmt.Fprintf(&b, "Set B: Claims from other authors (historians, biographers, etc.)\n%s\n\n", FormatClaims(req.OtherClaims))

	b.WriteString(`Your tasks:

1. Assign an OVERALL CONSISTENCY SCORE between 0 and 100, where:
   - 0 = total contradiction between Lincoln and later authors
   - 100 = perfect alignment, no meaningful contradictions

2. Identify points of AGREEMENT between Set A and Set B. List up to 5 short examples.

3. Identify points of CONTRADICTION or clear disagreement. For each, classify the type of difference as one of:
   - "factual"      (e.g., dates, numbers, locations differ)
   - "interpretive" (same facts, but different motives, causes, feelings)
   - "omission"     (Author A mentions something that B ignores)

4. Describe briefly:
   - What seems to be missing from Lincoln's own claims relative to later authors.
   - What seems to be missing from later authors relative to Lincoln.

5. Compare tone: does Lincoln sound more sympathetic, critical, neutral, or something else relative to later authors?

Return your answer as valid JSON with this EXACT structure:

`)
	fmt.Fprintf(&b, `{
  "event": "%s",
  "overall_consistency": <integer between 0 and 100>,
  "agreement_examples": [
    "<short agreement example 1>",
    "<short agreement example 2>"
  ],
  "contradictions": [
    {
      "description": "<short description of the contradiction>",
      "type": "<one of: factual, interpretive, omission>"
    }
  ],
  "missing_from_lincoln": "<brief sentence or paragraph>",
  "missing_from_others": "<brief sentence or paragraph>",
  "tone_comparison": "<brief comparison of tone between Lincoln and other authors>"
}
`, req.EventID)

	return systemPrompt, b.String()
}
