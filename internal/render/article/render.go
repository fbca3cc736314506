package article

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

// Meta is the header block shown above the rendered body.
type Meta struct {
	Title     string
	Author    string
	Published string
}

// Document renders an article's HTML content to plain text at the given
// width, prefixed with a title/author/date header. Rendering is CPU bound,
// so callers run it off the update loop.
func Document(raw string, meta Meta, width int) string {
	var b strings.Builder
	b.WriteString(meta.Title)
	b.WriteString("\n")
	if meta.Author != "" {
		b.WriteString("By " + meta.Author + "\n")
	}
	if meta.Published != "" {
		b.WriteString(meta.Published + "\n")
	}
	b.WriteString("\n---\n\n")
	b.WriteString(Text(raw, width))
	return b.String()
}

// Text converts an HTML fragment to wrapped plain text.
func Text(raw string, width int) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if width < 1 {
		width = 80
	}

	doc, err := nethtml.Parse(strings.NewReader("<html><body>" + raw + "</body></html>"))
	if err != nil {
		return strings.Join(wrapText(strings.TrimSpace(html.UnescapeString(raw)), width), "\n")
	}
	body := findBody(doc)
	if body == nil {
		return strings.Join(wrapText(strings.TrimSpace(html.UnescapeString(raw)), width), "\n")
	}

	var blocks []string
	var current strings.Builder
	flush := func() {
		text := strings.TrimSpace(collapseSpace(current.String()))
		current.Reset()
		if text != "" {
			blocks = append(blocks, text)
		}
	}
	walkBlocks(body, &current, flush)
	flush()

	lines := make([]string, 0, len(blocks)*2)
	for i, block := range blocks {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, wrapText(block, width)...)
	}
	return strings.Join(lines, "\n")
}

// Block-level elements start a new paragraph; script and style subtrees are
// dropped; everything else contributes inline text.
func walkBlocks(node *nethtml.Node, current *strings.Builder, flush func()) {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case nethtml.TextNode:
			current.WriteString(child.Data)
		case nethtml.ElementNode:
			name := strings.ToLower(child.Data)
			switch name {
			case "script", "style", "noscript", "iframe":
				continue
			case "br":
				current.WriteString("\n")
				continue
			case "img":
				if alt := nodeAttr(child, "alt"); alt != "" {
					current.WriteString("[image: " + alt + "]")
				} else {
					current.WriteString("[image]")
				}
				continue
			case "li":
				flush()
				current.WriteString("- ")
				walkBlocks(child, current, flush)
				flush()
				continue
			case "p", "div", "section", "article", "blockquote",
				"h1", "h2", "h3", "h4", "h5", "h6",
				"ul", "ol", "table", "tr", "pre", "figure", "figcaption", "hr":
				flush()
				walkBlocks(child, current, flush)
				flush()
				continue
			}
			walkBlocks(child, current, flush)
		}
	}
}

func collapseSpace(s string) string {
	parts := strings.Split(s, "\n")
	for i, part := range parts {
		parts[i] = strings.Join(strings.Fields(part), " ")
	}
	return strings.Join(parts, "\n")
}

func findBody(node *nethtml.Node) *nethtml.Node {
	if node == nil {
		return nil
	}
	if node.Type == nethtml.ElementNode && strings.EqualFold(node.Data, "body") {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findBody(child); found != nil {
			return found
		}
	}
	return nil
}

func nodeAttr(node *nethtml.Node, name string) string {
	for _, attr := range node.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

func wrapText(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	paragraphs := strings.Split(text, "\n")
	out := make([]string, 0, len(paragraphs))

	for _, p := range paragraphs {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		lineLen := 0
		for _, word := range words {
			// Hard-break overlong words on rune boundaries.
			runes := []rune(word)
			for len(runes) > width {
				if line != "" {
					out = append(out, line)
					line, lineLen = "", 0
				}
				out = append(out, string(runes[:width]))
				runes = runes[width:]
			}
			if len(runes) == 0 {
				continue
			}
			word = string(runes)
			if line == "" {
				line, lineLen = word, len(runes)
				continue
			}
			if lineLen+1+len(runes) <= width {
				line += " " + word
				lineLen += 1 + len(runes)
				continue
			}
			out = append(out, line)
			line, lineLen = word, len(runes)
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
