package ingest

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextContent returns the text under n, one text node per line, skipping
// script and style elements
func TextContent(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, "\n")
}

// findFirst returns the first node in document order matching pred
func findFirst(n *html.Node, pred func(*html.Node) bool) *html.Node {
	if pred(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, pred); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// MainText returns the text of div#content, else div.content, else the whole page
func MainText(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}

	isDiv := func(n *html.Node) bool { return n.Type == html.ElementNode && n.DataAtom == atom.Div }
	main := findFirst(doc, func(n *html.Node) bool { return isDiv(n) && attr(n, "id") == "content" })
	if main == nil {
		main = findFirst(doc, func(n *html.Node) bool { return isDiv(n) && hasClass(n, "content") })
	}
	if main == nil {
		main = doc
	}
	return strings.TrimSpace(TextContent(main)), nil
}

// LooksLikeMarkup reports whether content appears to carry XML or HTML tags
func LooksLikeMarkup(content string) bool {
	return strings.Contains(content, "<") && strings.Contains(content, ">") && strings.Contains(content, "</")
}

// StripMarkup converts tagged content to plain text, one trimmed non-empty
// line per text line. Content without markup is only trimmed.
func StripMarkup(content string) string {
	if !LooksLikeMarkup(content) {
		return strings.TrimSpace(content)
	}

	var lines []string
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.TextToken {
			continue
		}
		for _, ln := range strings.Split(string(z.Text()), "\n") {
			if ln = strings.TrimSpace(ln); ln != "" {
				lines = append(lines, ln)
			}
		}
	}
	return strings.Join(lines, "\n")
}
