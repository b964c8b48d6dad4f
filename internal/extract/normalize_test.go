package extract

import (
	"testing"

	"github.com/ppiankov/concordia/internal/model"
)

func TestNormalizeExtraction_Totality(t *testing.T) {
	inputs := []string{
		"",
		"I could not find anything about this event.",
		`{"claims": ["Lincoln called for volunteers."`,
		"}{",
		`{"claims": "not a list", "temporal_details": [], "tone": 7}`,
		`null`,
		`[1, 2, 3]`,
	}

	for _, in := range inputs {
		ext, _ := NormalizeExtraction(in)
		if ext.Claims == nil {
			t.Errorf("Input %q: expected non-nil claims", in)
		}
		if len(ext.Claims) != 0 {
			t.Errorf("Input %q: expected no claims, got %v", in, ext.Claims)
		}
		if ext.Tone != model.ToneNotDiscussed {
			t.Errorf("Input %q: expected tone %q, got %q", in, model.ToneNotDiscussed, ext.Tone)
		}
		if ext.TemporalDetails != (model.TemporalDetails{}) {
			t.Errorf("Input %q: expected empty temporal details, got %+v", in, ext.TemporalDetails)
		}
	}
}

func TestNormalizeExtraction_FencedWithProse(t *testing.T) {
	raw := "Here is the result:\n```json\n" + `{
  "claims": ["Fort Sumter was fired upon.", "  ", "Lincoln called for 75,000 volunteers."],
  "temporal_details": {"date": "April 12, 1861", "place": "Charleston Harbor"},
  "tone": "sympathetic"
}` + "\n```\nLet me know if you need more."

	ext, ok := NormalizeExtraction(raw)
	if !ok {
		t.Fatal("Expected output to parse")
	}
	if len(ext.Claims) != 2 {
		t.Errorf("Expected 2 claims, got %v", ext.Claims)
	}
	if ext.TemporalDetails.Date != "April 12, 1861" || ext.TemporalDetails.Time != "" || ext.TemporalDetails.Place != "Charleston Harbor" {
		t.Errorf("Unexpected temporal details: %+v", ext.TemporalDetails)
	}
	if ext.Tone != model.ToneSympathetic {
		t.Errorf("Expected canonical tone Sympathetic, got %q", ext.Tone)
	}
}

func TestNormalizeExtraction_Unparseable(t *testing.T) {
	if _, ok := NormalizeExtraction("no json here"); ok {
		t.Error("Expected ok=false for prose")
	}
}

func TestCoerceExtraction_Scalars(t *testing.T) {
	temporal := map[string]any{
		"date":  float64(1865),
		"time":  nil,
		"place": map[string]any{"city": "Washington"},
	}
	tree := map[string]any{
		"claims":           []any{"One.", float64(1863), true, map[string]any{"x": "y"}, nil, []any{"nested"}},
		"temporal_details": temporal,
		"tone":             "Hostile",
	}

	ext := CoerceExtraction(tree)
	want := []string{"One.", "1863", "true"}
	if len(ext.Claims) != len(want) {
		t.Fatalf("Expected claims %v, got %v", want, ext.Claims)
	}
	for i := range want {
		if ext.Claims[i] != want[i] {
			t.Errorf("Claim %d: expected %q, got %q", i, want[i], ext.Claims[i])
		}
	}
	if ext.TemporalDetails.Date != "1865" || ext.TemporalDetails.Time != "" || ext.TemporalDetails.Place != "" {
		t.Errorf("Unexpected temporal details: %+v", ext.TemporalDetails)
	}
	if ext.Tone != model.ToneNotDiscussed {
		t.Errorf("Expected unknown tone to fall back, got %q", ext.Tone)
	}
}

func TestCanonicalTone(t *testing.T) {
	cases := map[string]model.Tone{
		"Critical":      model.ToneCritical,
		" mixed ":       model.ToneMixed,
		"NOT DISCUSSED": model.ToneNotDiscussed,
		"neutral":       model.ToneNeutral,
		"somewhat warm": model.ToneNotDiscussed,
	}
	for in, want := range cases {
		if got := CanonicalTone(in); got != want {
			t.Errorf("CanonicalTone(%q) = %q, expected %q", in, got, want)
		}
	}
}
