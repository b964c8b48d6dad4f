package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/ppiankov/concordia/internal/model"
)

// LoadDocuments reads normalized corpora in order and concatenates them.
// Missing fields become empty strings; non-string scalars are stringified.
func LoadDocuments(paths ...string) ([]model.Document, error) {
	var docs []model.Document
	for _, path := range paths {
		err := EachLine(path, func(lineNo int, line []byte) error {
			var raw map[string]any
			if err := json.Unmarshal(line, &raw); err != nil {
				return fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			doc := DocumentFromMap(raw)
			if doc.ID == "" {
				return fmt.Errorf("%s:%d: record has no id", path, lineNo)
			}
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// DocumentFromMap coerces an untyped record into a Document
func DocumentFromMap(raw map[string]any) model.Document {
	field := func(k string) string {
		v, ok := raw[k]
		if !ok || v == nil {
			return ""
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return ""
		}
		return s
	}

	return model.Document{
		ID:           strings.TrimSpace(field("id")),
		Title:        field("title"),
		Reference:    field("reference"),
		DocumentType: field("document_type"),
		Date:         field("date"),
		Place:        field("place"),
		From:         field("from"),
		To:           field("to"),
		Content:      field("content"),
	}
}
