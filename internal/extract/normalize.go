package extract

import (
	"strings"

	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
)

// DefaultExtraction is substituted when the output cannot be parsed
func DefaultExtraction() model.Extraction {
	return model.Extraction{
		Claims: []string{},
		Tone:   model.ToneNotDiscussed,
	}
}

// NormalizeExtraction parses raw model output into a fixed-shape extraction.
// It never fails; ok is false when the default structure was substituted.
func NormalizeExtraction(raw string) (ext model.Extraction, ok bool) {
	tree, err := llm.ParseLoose(raw)
	if err != nil {
		return DefaultExtraction(), false
	}
	return CoerceExtraction(tree), true
}

// CoerceExtraction maps an untyped tree onto the extraction shape
func CoerceExtraction(tree map[string]any) model.Extraction {
	ext := DefaultExtraction()
	if tree == nil {
		return ext
	}

	ext.Claims = llm.CoerceStrings(tree["claims"])

	if td, isMap := tree["temporal_details"].(map[string]any); isMap {
		ext.TemporalDetails = model.TemporalDetails{
			Date:  llm.CoerceString(td["date"]),
			Time:  llm.CoerceString(td["time"]),
			Place: llm.CoerceString(td["place"]),
		}
	}

	if s, isStr := tree["tone"].(string); isStr {
		ext.Tone = CanonicalTone(s)
	}
	return ext
}

// CanonicalTone matches s case-insensitively against the tone labels
func CanonicalTone(s string) model.Tone {
	s = strings.TrimSpace(s)
	for _, t := range model.Tones {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return model.ToneNotDiscussed
}
