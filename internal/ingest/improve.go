package ingest

import (
	"regexp"
	"strings"

	"github.com/ppiankov/concordia/internal/model"
)

var months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var yearPattern = regexp.MustCompile(`\b(18[0-9]{2}|19[0-9]{2})\b`)

// GuessDate returns the first line naming a month and a 19th or 20th century year
func GuessDate(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if containsAny(line, months) && yearPattern.MatchString(line) {
			return line
		}
	}
	return ""
}

// GuessPlace returns the text before the month name on the first dated-looking
// line, e.g. "Executive Mansion, Washington" from
// "Executive Mansion, Washington, April 8, 1861"
func GuessPlace(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		for _, m := range months {
			before, _, found := strings.Cut(line, m)
			if !found {
				continue
			}
			if before = strings.TrimSpace(before); before != "" {
				return strings.TrimSpace(strings.TrimRight(before, ",.;"))
			}
		}
	}
	return ""
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// MergeCurated fills blank fields from curated metadata; present values win
func MergeCurated(doc *model.Document, item model.LoCItem) {
	fill := func(field *string, curated string) {
		if curated != "" && blank(*field) {
			*field = curated
		}
	}
	fill(&doc.Title, item.Title)
	fill(&doc.Date, item.Date)
	fill(&doc.Place, item.Place)
	fill(&doc.From, item.From)
	fill(&doc.To, item.To)
	fill(&doc.DocumentType, item.DocumentType)
}

// Improve strips markup from the content, merges curated metadata, then
// guesses a missing date or place from the text. It reports which of date
// and place went from blank to filled.
func Improve(doc *model.Document, item model.LoCItem) (dateFilled, placeFilled bool) {
	dateBefore := !blank(doc.Date)
	placeBefore := !blank(doc.Place)

	cleaned := StripMarkup(doc.Content)
	if blank(cleaned) && !blank(doc.Content) {
		cleaned = strings.TrimSpace(doc.Content)
	}
	doc.Content = cleaned

	MergeCurated(doc, item)

	if blank(doc.Date) {
		if guess := GuessDate(cleaned); guess != "" {
			doc.Date = guess
		}
	}
	if blank(doc.Place) {
		if guess := GuessPlace(cleaned); guess != "" {
			doc.Place = guess
		}
	}

	return !dateBefore && !blank(doc.Date), !placeBefore && !blank(doc.Place)
}
