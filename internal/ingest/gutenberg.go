package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/store"
)

// GutenbergBase is the Project Gutenberg site root
const GutenbergBase = "https://www.gutenberg.org"

// ErrNoPlainText is returned when a book page has no plain-text download link
var ErrNoPlainText = errors.New("plain text utf-8 download link not found")

var (
	startMarkers = []string{"*** START OF THIS PROJECT GUTENBERG EBOOK", "*** START OF THE PROJECT GUTENBERG EBOOK"}
	endMarkers   = []string{"*** END OF THIS PROJECT GUTENBERG EBOOK", "*** END OF THE PROJECT GUTENBERG EBOOK"}
)

// PlainTextLink finds the "Plain Text UTF-8" link on a book page and
// resolves it against the page URL
func PlainTextLink(page, pageURL string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse book page: %w", err)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page URL: %w", err)
	}

	link := findFirst(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != atom.A || attr(n, "href") == "" {
			return false
		}
		text := strings.ToLower(strings.TrimSpace(TextContent(n)))
		return strings.Contains(strings.Join(strings.Fields(text), " "), "plain text utf-8")
	})
	if link == nil {
		return "", ErrNoPlainText
	}

	ref, err := url.Parse(attr(link, "href"))
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// DownloadGutenberg fetches each book's page, follows its plain-text link and
// saves <raw>/gutenberg/<id>.txt. Existing files are skipped.
func (d *Downloader) DownloadGutenberg(ctx context.Context, books []model.GutenbergBook) ([]Outcome, error) {
	var outcomes []Outcome
	for _, book := range books {
		out := d.downloadBook(ctx, book)
		out, err := d.finish(ctx, out)
		outcomes = append(outcomes, out)
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

func (d *Downloader) downloadBook(ctx context.Context, book model.GutenbergBook) Outcome {
	out := Outcome{ID: book.ID, Path: filepath.Join(d.rawDir, "gutenberg", book.ID+".txt")}
	if d.exists(out.Path) {
		out.Skipped = true
		return out
	}

	pageURL := strings.TrimRight(d.gutenbergBase, "/") + "/ebooks/" + book.ID
	page, err := d.fetcher.Get(ctx, pageURL, "")
	if err != nil {
		out.Err = fmt.Errorf("book page: %w", err)
		return out
	}

	textURL, err := PlainTextLink(string(page.Body), page.FinalURL)
	if err != nil {
		out.Err = err
		return out
	}
	d.logger.Debug("found text URL", zap.String("id", book.ID), zap.String("url", textURL))

	text, err := d.fetcher.Get(ctx, textURL, "text/plain")
	if err != nil {
		out.Err = fmt.Errorf("plain text: %w", err)
		return out
	}
	if err := writeFileAtomic(out.Path, text.Body); err != nil {
		out.Err = err
	}
	return out
}

// StripBoilerplate removes the Project Gutenberg header and footer.
// When nothing remains the whole trimmed text is returned.
func StripBoilerplate(text string) string {
	normalized := strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(normalized, "\n")

	start, end := 0, len(lines)
	for i, line := range lines {
		if containsAny(strings.ToUpper(line), startMarkers) {
			start = i + 1
			break
		}
	}
	for j := len(lines) - 1; j >= 0; j-- {
		if containsAny(strings.ToUpper(lines[j]), endMarkers) {
			end = j
			break
		}
	}

	body := ""
	if start < end {
		body = strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	}
	if body == "" {
		return strings.TrimSpace(text)
	}
	return body
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// NormalizeGutenberg converts every <raw>/gutenberg/*.txt file into a record,
// in file name order. Known books take their curated title and type.
func NormalizeGutenberg(rawDir string, books []model.GutenbergBook) ([]model.Document, error) {
	dir := filepath.Join(rawDir, "gutenberg")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", store.ErrInputMissing, dir)
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	meta := make(map[string]model.GutenbergBook, len(books))
	for _, b := range books {
		meta[b.ID] = b
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]model.Document, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(name, ".txt")
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		title := fmt.Sprintf("Gutenberg Book %s", id)
		docType := "Book"
		if b, ok := meta[id]; ok {
			if b.Title != "" {
				title = b.Title
			}
			if b.DocumentType != "" {
				docType = b.DocumentType
			}
		}

		docs = append(docs, model.Document{
			ID:           model.GutenbergPrefix + id,
			Title:        title,
			Reference:    GutenbergBase + "/ebooks/" + id,
			DocumentType: docType,
			Content:      StripBoilerplate(string(raw)),
		})
	}
	return docs, nil
}
