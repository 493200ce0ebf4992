package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// heuristicText extracts readable text from raw HTML, preferring <article>
// or <main> and falling back to <body>. Paragraph-like blocks become lines;
// navigation, scripts and consent banners are skipped.
func heuristicText(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	var root *html.Node
	for _, tag := range []string{"article", "main", "body"} {
		if root = findFirst(node, tag); root != nil {
			break
		}
	}
	if root == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, root)
	return normalizeLines(b.String())
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if res := findFirst(c, tag); res != nil {
			return res
		}
	}
	return nil
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		if isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "form", "button":
			return
		case "br", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "pre":
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "pre":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer reports elements that look like cookie or consent banners.
func isBoilerplateContainer(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, needle := range []string{"cookie", "consent", "gdpr", "newsletter-signup"} {
			if strings.Contains(val, needle) {
				return true
			}
		}
	}
	return false
}
