package extract

import (
	stdhtml "html"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// BodyExtractor converts Reddit *_html bodies into plain text suitable for
// prompting. Listing payloads entity-encode the markup, so the input is
// unescaped before parsing.
type BodyExtractor struct{}

// NewBodyExtractor creates a new body extractor
func NewBodyExtractor() *BodyExtractor {
	return &BodyExtractor{}
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// Flatten returns the text content of an HTML body, one paragraph per line
func (e *BodyExtractor) Flatten(rawHTML string) string {
	decoded := stdhtml.UnescapeString(rawHTML)

	doc, err := html.Parse(strings.NewReader(decoded))
	if err != nil {
		return strings.TrimSpace(decoded)
	}

	var b strings.Builder
	var walk func(*html.Node)

	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "br":
				b.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			b.WriteString("\n")
		}
	}

	walk(doc)

	return tidy(b.String())
}

// isBlock reports whether the element ends a line of flattened text
func isBlock(tag string) bool {
	switch tag {
	case "p", "li", "blockquote", "pre", "div", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
		return true
	}
	return false
}

// tidy collapses runs of blank lines and trims each line
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	out := strings.Join(lines, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
