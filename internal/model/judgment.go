package model

// ContradictionType classifies a disagreement between the two claim sets
type ContradictionType string

const (
	ContradictionFactual      ContradictionType = "factual"      // Dates, numbers, locations differ
	ContradictionInterpretive ContradictionType = "interpretive" // Same facts, different motives or feelings
	ContradictionOmission     ContradictionType = "omission"     // One side mentions what the other ignores
)

// Valid reports whether t is one of the three enumerated types
func (t ContradictionType) Valid() bool {
	switch t {
	case ContradictionFactual, ContradictionInterpretive, ContradictionOmission:
		return true
	}
	return false
}

// Contradiction is one typed disagreement
type Contradiction struct {
	Description string            `json:"description"`
	Type        ContradictionType `json:"type"`
}

// Judgment is the consistency verdict for one event
type Judgment struct {
	Event              string          `json:"event"`
	OverallConsistency int             `json:"overall_consistency"` // Clamped to [0,100]
	AgreementExamples  []string        `json:"agreement_examples"`
	Contradictions     []Contradiction `json:"contradictions"`
	MissingFromLincoln string          `json:"missing_from_lincoln"`
	MissingFromOthers  string          `json:"missing_from_others"`
	ToneComparison     string          `json:"tone_comparison"`

	// Enrichment from the grouping step
	EventName         string   `json:"event_name"`
	LincolnDocIDs     []string `json:"lincoln_doc_ids"`
	OtherDocIDs       []string `json:"other_doc_ids"`
	LincolnClaimCount int      `json:"lincoln_claim_count"`
	OtherClaimCount   int      `json:"other_claim_count"`
	UnknownClaimCount int      `json:"unknown_claim_count,omitempty"`
}

// DefaultConsistency is used when the model gives no usable score
const DefaultConsistency = 50
