package judge

import (
	"strings"

	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
)

// contradictionRule maps description substrings to a contradiction type
type contradictionRule struct {
	Type     model.ContradictionType
	Keywords []string
}

// contradictionRules is applied in order when the model gives no valid type.
// Matching is case-insensitive; the first rule with a hit wins.
var contradictionRules = []contradictionRule{
	{Type: model.ContradictionFactual, Keywords: []string{"date", "number", "location"}},
	{Type: model.ContradictionInterpretive, Keywords: []string{"motive", "cause", "feeling"}},
	{Type: model.ContradictionOmission, Keywords: []string{"mention", "ignore", "omission"}},
}

// InferContradictionType classifies a description with the rule table.
// Descriptions matching no rule are interpretive.
func InferContradictionType(description string) model.ContradictionType {
	lower := strings.ToLower(description)
	for _, rule := range contradictionRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Type
			}
		}
	}
	return model.ContradictionInterpretive
}

// DefaultJudgment is substituted when the output cannot be parsed
func DefaultJudgment(eventID string) model.Judgment {
	return model.Judgment{
		Event:              eventID,
		OverallConsistency: model.DefaultConsistency,
		AgreementExamples:  []string{},
		Contradictions:     []model.Contradiction{},
	}
}

// NormalizeJudgment parses raw judge output into a fixed-shape judgment.
// It never fails; ok is false when the default structure was substituted.
func NormalizeJudgment(raw, eventID string) (j model.Judgment, ok bool) {
	tree, err := llm.ParseLoose(raw)
	if err != nil {
		return DefaultJudgment(eventID), false
	}
	return CoerceJudgment(tree, eventID), true
}

// CoerceJudgment maps an untyped tree onto the judgment shape. The record
// is always keyed by eventID; an echoed "event" value is ignored.
func CoerceJudgment(tree map[string]any, eventID string) model.Judgment {
	j := DefaultJudgment(eventID)
	if tree == nil {
		return j
	}

	j.OverallConsistency = ExtractScore(tree)
	j.AgreementExamples = llm.CoerceStrings(tree["agreement_examples"])
	j.Contradictions = coerceContradictions(tree["contradictions"])

	j.MissingFromLincoln, _ = tree["missing_from_lincoln"].(string)
	j.MissingFromOthers, _ = tree["missing_from_others"].(string)
	j.ToneComparison, _ = tree["tone_comparison"].(string)
	return j
}

// ExtractScore returns the clamped overall_consistency, or the default score
func ExtractScore(tree map[string]any) int {
	if score, ok := llm.CoerceScore(tree["overall_consistency"]); ok {
		return score
	}
	return model.DefaultConsistency
}

func coerceContradictions(v any) []model.Contradiction {
	out := []model.Contradiction{}
	items, isList := v.([]any)
	if !isList {
		return out
	}

	for _, item := range items {
		obj, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		desc := strings.TrimSpace(llm.CoerceString(obj["description"]))
		if desc == "" {
			continue
		}
		ctype := model.ContradictionType(strings.ToLower(strings.TrimSpace(llm.CoerceString(obj["type"]))))
		if !ctype.Valid() {
			ctype = InferContradictionType(desc)
		}
		out = append(out, model.Contradiction{Description: desc, Type: ctype})
	}
	return out
}
