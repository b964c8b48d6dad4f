package model

// Event is a named historical occurrence with a keyword fingerprint
type Event struct {
	ID          string   `json:"event_id" yaml:"event_id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Keywords    []string `json:"keywords" yaml:"keywords"`
}
