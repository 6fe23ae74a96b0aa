package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// whitespaceRuns also matches no-break spaces, which HTML entity
// decoding produces from &nbsp;.
var whitespaceRuns = regexp.MustCompile(`[\s\p{Zs}]+`)

// nonContentTags are skipped entirely when extracting text.
var nonContentTags = map[string]bool{
	"style":    true,
	"script":   true,
	"noscript": true,
	"iframe":   true,
	"head":     true,
	"meta":     true,
	"link":     true,
}

// CleanHTML converts an HTML document fragment to plain text: markup is
// stripped, entities are decoded, and runs of whitespace collapse to
// single spaces.
func CleanHTML(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		// html.Parse is tolerant; if it fails anyway, fall back to a
		// crude tag strip so the body is still usable.
		return CollapseWhitespace(htmlTagPattern.ReplaceAllString(raw, " "))
	}

	var sb strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if nonContentTags[strings.ToLower(n.Data)] {
				return
			}
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return CollapseWhitespace(sb.String())
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// CollapseWhitespace reduces every whitespace run to a single space and
// trims the ends.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}
