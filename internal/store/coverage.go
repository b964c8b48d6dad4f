package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/concordia/internal/model"
)

// Coverage summarizes field presence across a corpus file
type Coverage struct {
	Path     string
	Total    int
	NonEmpty map[string]int      // field -> records with a non-blank string value
	Missing  map[string][]string // record id -> required keys absent from the line
}

// CheckCoverage reads a corpus file and counts non-empty required fields
func CheckCoverage(path string) (*Coverage, error) {
	cov := &Coverage{
		Path:     path,
		NonEmpty: make(map[string]int, len(model.RequiredDocumentFields)),
		Missing:  make(map[string][]string),
	}
	for _, k := range model.RequiredDocumentFields {
		cov.NonEmpty[k] = 0
	}

	err := EachLine(path, func(lineNo int, line []byte) error {
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		cov.Total++

		id, _ := rec["id"].(string)
		if id == "" {
			id = fmt.Sprintf("line %d", lineNo)
		}

		for _, k := range model.RequiredDocumentFields {
			v, ok := rec[k]
			if !ok {
				cov.Missing[id] = append(cov.Missing[id], k)
				continue
			}
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
				cov.NonEmpty[k]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cov, nil
}

// OK reports whether every record carried every required key
func (c *Coverage) OK() bool {
	return len(c.Missing) == 0
}
