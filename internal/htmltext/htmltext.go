// Package htmltext extracts plain text from HTML documents before tagging.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

// Strip parses s as HTML and returns the concatenated text content.
// On parse failure the input is returned unchanged.
func Strip(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
