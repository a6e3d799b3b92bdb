package pipeline

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
)

// InjectCSS inserts each non-empty stylesheet as a <style> block before
// </head>, after <body>, or at the start of the content, whichever is found
// first. Stylesheets are sanitized so they cannot close the style element.
func InjectCSS(htmlContent string, stylesheets ...string) string {
	var blocks strings.Builder
	for _, css := range stylesheets {
		if strings.TrimSpace(css) == "" {
			continue
		}
		blocks.WriteString("<style>")
		blocks.WriteString(sanitizeCSS(css))
		blocks.WriteString("</style>\n")
	}
	styleBlock := blocks.String()
	if styleBlock == "" {
		return htmlContent
	}

	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// Metadata keys controlling the table of contents.
const (
	MetaTOC      = "toc"
	MetaTOCTitle = "toc-title"
	MetaTOCDepth = "toc-depth"
)

// Default table of contents settings.
const (
	DefaultTOCDepth = 3
	DefaultTOCTitle = "Contents"
)

// TOCOptions selects the headings listed in a table of contents.
type TOCOptions struct {
	Title    string
	MinDepth int // Minimum heading level (1 lists the title heading too)
	MaxDepth int // Maximum heading level
}

// TOCOptionsFromMetadata reads toc, toc-title and toc-depth.
// Returns nil when the document does not ask for a table of contents.
// An invalid depth falls back to DefaultTOCDepth.
func TOCOptionsFromMetadata(meta *Metadata) *TOCOptions {
	enabled, err := strconv.ParseBool(meta.Value(MetaTOC))
	if err != nil || !enabled {
		return nil
	}

	opts := &TOCOptions{Title: DefaultTOCTitle, MinDepth: 1, MaxDepth: DefaultTOCDepth}
	if title, ok := meta.Get(MetaTOCTitle); ok {
		opts.Title = title
	}
	if depth, err := strconv.Atoi(meta.Value(MetaTOCDepth)); err == nil && depth >= 1 && depth <= 6 {
		opts.MaxDepth = depth
	}
	return opts
}

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // heading text content
}

// headingLevels maps heading element names to their level.
var headingLevels = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// extractHeadings returns headings with an id between minDepth and maxDepth,
// in document order.
func extractHeadings(root *nethtml.Node, minDepth, maxDepth int) []headingInfo {
	var headings []headingInfo

	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			if level, ok := headingLevels[n.Data]; ok {
				id := attrValue(n, "id")
				if id != "" && level >= minDepth && level <= maxDepth {
					headings = append(headings, headingInfo{
						Level: level,
						ID:    id,
						Text:  strings.Join(strings.Fields(textContent(n)), " "),
					})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return headings
}

// attrValue returns the value of attribute key on n, or "".
func attrValue(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text nodes under n. Rendered math contributes
// its annotation-free text only.
func textContent(n *nethtml.Node) string {
	var b strings.Builder
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		switch {
		case n.Type == nethtml.TextNode:
			b.WriteString(n.Data)
		case n.Type == nethtml.ElementNode && (n.Data == "annotation" || n.Data == "svg"):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// numberingState tracks hierarchical numbering for TOC entries.
// The first heading's level becomes depth 1 and skipped levels are closed up.
type numberingState struct {
	counters     [6]int // counters[0] = depth 1 count, etc.
	minLevelSeen int    // 0 until the first heading
	lastDepth    int
}

// next returns the number string ("1.2.") and effective depth for a heading level.
func (n *numberingState) next(level int) (numStr string, depth int) {
	if n.minLevelSeen == 0 {
		n.minLevelSeen = level
	}

	depth = max(level-n.minLevelSeen+1, 1)

	// H1 -> H3 nests one level, not two
	if n.lastDepth > 0 && depth > n.lastDepth+1 {
		depth = n.lastDepth + 1
	}

	for i := depth; i < len(n.counters); i++ {
		n.counters[i] = 0
	}
	n.counters[depth-1]++
	n.lastDepth = depth

	parts := make([]string, depth)
	for i := range depth {
		parts[i] = strconv.Itoa(n.counters[i])
	}
	return strings.Join(parts, ".") + ".", depth
}

// generateNumberedTOC creates HTML for a numbered table of contents.
// Uses <div> elements instead of <ul>/<li> to avoid CSS list-style conflicts.
func generateNumberedTOC(headings []headingInfo, title string) string {
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(`<nav class="toc">`)

	if title != "" {
		buf.WriteString(`<h2 class="toc-title">`)
		buf.WriteString(html.EscapeString(title))
		buf.WriteString(`</h2>`)
	}

	buf.WriteString(`<div class="toc-list">`)

	numbering := &numberingState{}
	for _, h := range headings {
		num, depth := numbering.next(h.Level)

		buf.WriteString(`<div class="toc-item"`)
		if depth > 1 {
			fmt.Fprintf(&buf, ` style="padding-left:%.1fem"`, float64(depth-1)*1.5)
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(num)
		buf.WriteString(` `)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a></div>`)
	}

	buf.WriteString(`</div></nav>`)
	return buf.String()
}

// InjectTOC prepends a numbered table of contents built from the headings
// in body. If opts is nil or no heading qualifies, body is returned unchanged.
func InjectTOC(body string, opts *TOCOptions) (string, error) {
	if opts == nil {
		return body, nil
	}

	root, _, err := parseHTML(body)
	if err != nil {
		return "", fmt.Errorf("parsing headings: %w", err)
	}

	toc := generateNumberedTOC(extractHeadings(root, opts.MinDepth, opts.MaxDepth), opts.Title)
	if toc == "" {
		return body, nil
	}
	return toc + "\n" + body, nil
}
