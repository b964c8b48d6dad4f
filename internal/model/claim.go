package model

// Tone classifies an author's attitude toward Lincoln for one event
type Tone string

const (
	ToneSympathetic  Tone = "Sympathetic"
	ToneCritical     Tone = "Critical"
	ToneNeutral      Tone = "Neutral"
	ToneMixed        Tone = "Mixed"
	ToneNotDiscussed Tone = "Not discussed"
)

// Tones lists the accepted tone labels in prompt order
var Tones = []Tone{ToneSympathetic, ToneCritical, ToneNeutral, ToneMixed, ToneNotDiscussed}

// TemporalDetails holds the when/where the model found for an event
type TemporalDetails struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Place string `json:"place"`
}

// ClaimRecord is one extraction result for a (document, event) pair.
// Records are appended to the claims log and never mutated.
type ClaimRecord struct {
	Event           string          `json:"event"`
	EventName       string          `json:"event_name"`
	DocID           string          `json:"doc_id"`
	Source          Source          `json:"source"`
	DocumentTitle   string          `json:"document_title"`
	Claims          []string        `json:"claims"`
	TemporalDetails TemporalDetails `json:"temporal_details"`
	Tone            Tone            `json:"tone"`
}

// Extraction is the normalized shape of an extraction response
type Extraction struct {
	Claims          []string        `json:"claims"`
	TemporalDetails TemporalDetails `json:"temporal_details"`
	Tone            Tone            `json:"tone"`
}
