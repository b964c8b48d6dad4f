package model

import "strings"

// Document is one normalized corpus record. All fields are plain strings;
// missing fields decode as empty strings.
type Document struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Reference    string `json:"reference"`     // Source URL
	DocumentType string `json:"document_type"` // Letter, Speech, Book, ...
	Date         string `json:"date"`          // As written in the source
	Place        string `json:"place"`
	From         string `json:"from"`
	To           string `json:"to"`
	Content      string `json:"content"`
}

// Source categorizes the authorship of a document relative to Lincoln
type Source string

const (
	SourceLincoln Source = "lincoln" // Primary, first-person (Library of Congress items)
	SourceOther   Source = "other"   // Secondary authors (Gutenberg books)
	SourceUnknown Source = "unknown"
)

const (
	LoCPrefix       = "loc_"
	GutenbergPrefix = "gutenberg_"
)

// ClassifySource derives the source category from the document id prefix
func ClassifySource(docID string) Source {
	switch {
	case strings.HasPrefix(docID, LoCPrefix):
		return SourceLincoln
	case strings.HasPrefix(docID, GutenbergPrefix):
		return SourceOther
	default:
		return SourceUnknown
	}
}

// RequiredDocumentFields lists the keys every corpus line is expected to carry
var RequiredDocumentFields = []string{
	"id", "title", "reference", "document_type", "date", "place", "from", "to", "content",
}
