package score

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Scored is a chunk paired with its relevance score for one event
type Scored struct {
	Index int // Position in the original chunk sequence
	Text  string
	Score int
}

// Scorer counts distinct keyword hits in text
type Scorer struct {
	fold     cases.Caser
	keywords []string // Folded, empty entries removed
}

// NewScorer creates a new scorer for one event's keyword set
func NewScorer(keywords []string) *Scorer {
	s := &Scorer{fold: cases.Fold()}
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			s.keywords = append(s.keywords, s.fold.String(kw))
		}
	}
	return s
}

// Score returns the number of keywords present at least once in text
func (s *Scorer) Score(text string) int {
	if len(s.keywords) == 0 || text == "" {
		return 0
	}
	folded := s.fold.String(text)
	score := 0
	for _, kw := range s.keywords {
		if strings.Contains(folded, kw) {
			score++
		}
	}
	return score
}

// Rank scores every chunk and returns at most topK with score > 0,
// highest first. Equal scores keep their original order.
func (s *Scorer) Rank(chunks []string, topK int) []Scored {
	if topK <= 0 {
		return nil
	}

	var ranked []Scored
	for i, c := range chunks {
		if score := s.Score(c); score > 0 {
			ranked = append(ranked, Scored{Index: i, Text: c, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Score is a convenience wrapper for one-off scoring
func Score(text string, keywords []string) int {
	return NewScorer(keywords).Score(text)
}
