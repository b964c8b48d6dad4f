package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/store"
)

// textKeyTerms mark JSON keys whose string values carry document text
var textKeyTerms = []string{"transcription", "text", "fulltext"}

// isHTMLItem reports whether an item is an exhibit page rather than a JSON API item
func isHTMLItem(item model.LoCItem) bool {
	return strings.Contains(item.URL, "gettysburg-address") || strings.HasSuffix(item.URL, ".html")
}

// JSONURL returns the LoC JSON API form of an item URL
func JSONURL(itemURL string) string {
	return strings.TrimRight(itemURL, "/") + "/?fo=json"
}

// DownloadLoC saves <raw>/loc/<id>.json for API items and <id>.html for exhibit pages
func (d *Downloader) DownloadLoC(ctx context.Context, items []model.LoCItem) ([]Outcome, error) {
	var outcomes []Outcome
	for _, item := range items {
		out := d.downloadItem(ctx, item)
		out, err := d.finish(ctx, out)
		outcomes = append(outcomes, out)
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

func (d *Downloader) downloadItem(ctx context.Context, item model.LoCItem) Outcome {
	dir := filepath.Join(d.rawDir, "loc")
	out := Outcome{ID: item.ID}

	if isHTMLItem(item) {
		out.Path = filepath.Join(dir, item.ID+".html")
		if d.exists(out.Path) {
			out.Skipped = true
			return out
		}
		resp, err := d.fetcher.Get(ctx, item.URL, "")
		if err != nil {
			out.Err = err
			return out
		}
		out.Err = writeFileAtomic(out.Path, resp.Body)
		return out
	}

	out.Path = filepath.Join(dir, item.ID+".json")
	if d.exists(out.Path) {
		out.Skipped = true
		return out
	}
	resp, err := d.fetcher.Get(ctx, JSONURL(item.URL), "application/json")
	if err != nil {
		out.Err = err
		return out
	}

	// Re-indent so raw files are readable and known to be valid JSON
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Body, "", "  "); err != nil {
		out.Err = fmt.Errorf("invalid JSON from %s: %w", item.URL, err)
		return out
	}
	out.Err = writeFileAtomic(out.Path, pretty.Bytes())
	return out
}

// LoCFields are the values pulled from one raw LoC JSON document
type LoCFields struct {
	Title   string
	Date    string
	Place   string
	Content string
}

// ExtractLoCFields reads title, date and place from item[0] (or the top level)
// and joins every string stored under a text-bearing key, in document order
func ExtractLoCFields(data []byte) (LoCFields, error) {
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return LoCFields{}, fmt.Errorf("decode LoC JSON: %w", err)
	}

	var f LoCFields
	if items, ok := tree["item"].([]any); ok && len(items) > 0 {
		if first, ok := items[0].(map[string]any); ok {
			f.Title = firstString(first["title"])
			f.Date = firstString(first["date"])
			f.Place = firstString(first["location"])
		}
	} else {
		f.Title = firstString(tree["title"])
		f.Date = firstString(tree["date"])
	}

	texts, err := collectTexts(data)
	if err != nil {
		return LoCFields{}, err
	}
	f.Content = strings.TrimSpace(strings.Join(texts, "\n\n"))
	return f, nil
}

// firstString takes the first element of a list, then stringifies scalars
func firstString(v any) string {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	return llm.CoerceString(v)
}

// collectTexts walks the JSON token stream so values come out in source order
func collectTexts(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var out []string
	if err := walkTexts(dec, "", &out); err != nil {
		return nil, fmt.Errorf("scan LoC JSON: %w", err)
	}
	return out, nil
}

func walkTexts(dec *json.Decoder, key string, out *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				k, _ := kt.(string)
				if err := walkTexts(dec, k, out); err != nil {
					return err
				}
			}
			_, err = dec.Token()
			return err
		case '[':
			// List elements have no key of their own
			for dec.More() {
				if err := walkTexts(dec, "", out); err != nil {
					return err
				}
			}
			_, err = dec.Token()
			return err
		}
	case string:
		if key != "" && containsAny(strings.ToLower(key), textKeyTerms) {
			*out = append(*out, v)
		}
	}
	return nil
}

// LoCStats counts the outcome of one LoC normalization
type LoCStats struct {
	Total        int
	Failed       int
	EmptyContent int
	DatesFilled  int
	PlacesFilled int
}

// NormalizeLoC converts raw LoC items into cleaned records. Exhibit pages use
// their main content block; API items use their JSON fields. Each record is
// then cleaned and completed from curated metadata and the text itself.
func NormalizeLoC(rawDir string, items []model.LoCItem, logger *zap.Logger) ([]model.Document, LoCStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var stats LoCStats

	dir := filepath.Join(rawDir, "loc")
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, stats, fmt.Errorf("%w: %s", store.ErrInputMissing, dir)
		}
		return nil, stats, err
	}

	var docs []model.Document
	for _, item := range items {
		doc, err := normalizeItem(dir, item)
		if err != nil {
			stats.Failed++
			logger.Error("normalize failed", zap.String("id", item.ID), zap.Error(err))
			continue
		}
		if doc.Content == "" {
			stats.EmptyContent++
			logger.Warn("no content extracted", zap.String("id", item.ID))
		}

		dateFilled, placeFilled := Improve(&doc, item)
		if dateFilled {
			stats.DatesFilled++
		}
		if placeFilled {
			stats.PlacesFilled++
		}
		if blank(doc.Title) {
			doc.Title = fmt.Sprintf("LoC Item %s", item.ID)
		}
		stats.Total++
		docs = append(docs, doc)
	}
	return docs, stats, nil
}

func normalizeItem(dir string, item model.LoCItem) (model.Document, error) {
	docType := item.DocumentType
	if docType == "" {
		docType = "Unknown"
	}
	doc := model.Document{
		ID:           model.LoCPrefix + item.ID,
		Reference:    item.URL,
		DocumentType: docType,
	}

	htmlPath := filepath.Join(dir, item.ID+".html")
	if page, err := os.ReadFile(htmlPath); err == nil {
		text, err := MainText(string(page))
		if err != nil {
			return doc, fmt.Errorf("parse %s: %w", htmlPath, err)
		}
		doc.Content = text
	} else {
		data, err := os.ReadFile(filepath.Join(dir, item.ID+".json"))
		if err != nil {
			return doc, fmt.Errorf("read raw item: %w", err)
		}
		f, err := ExtractLoCFields(data)
		if err != nil {
			return doc, err
		}
		doc.Title = f.Title
		doc.Date = f.Date
		doc.Place = f.Place
		doc.Content = f.Content
	}
	return doc, nil
}
