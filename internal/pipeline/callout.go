package pipeline

import (
	"html"
	"regexp"
	"strings"
)

// DefaultCalloutKind is the kind whose icon is used for unrecognized callouts.
const DefaultCalloutKind = "note"

// CalloutKinds lists the recognized callout kinds.
var CalloutKinds = []string{"note", "warning", "important", "tip", "caution"}

// calloutPattern matches a fenced callout block:
//
//	:::{.callout-<kind>}
//	# optional title
//	body lines
//	:::
//
// Captures: 1=kind, 2=title, 3=body (including its trailing newline).
var calloutPattern = regexp.MustCompile(
	`(?m)^:::\{\.callout-([a-z]+)\}[ \t]*\n(?:#[ \t]+([^\n]*)\n)?((?s:.*?))^:::[ \t]*$`)

// Callout is one parsed callout block.
type Callout struct {
	Kind  string
	Title string
	Body  string
}

// DisplayTitle returns the explicit title, or the kind with its first letter
// capitalized.
func (c Callout) DisplayTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	if c.Kind == "" {
		return ""
	}
	return strings.ToUpper(c.Kind[:1]) + c.Kind[1:]
}

// CalloutTranslator defines the contract for callout translation.
type CalloutTranslator interface {
	TranslateCallouts(content string) string
}

// CalloutTranslation rewrites callout blocks into HTML containers whose body
// is left as Markdown for the next stage.
type CalloutTranslation struct {
	icons map[string]string
}

// Compile-time interface check.
var _ CalloutTranslator = (*CalloutTranslation)(nil)

// NewCalloutTranslation creates a CalloutTranslation with the given
// kind-to-icon markup map. The map is copied.
func NewCalloutTranslation(icons map[string]string) *CalloutTranslation {
	copied := make(map[string]string, len(icons))
	for k, v := range icons {
		copied[k] = v
	}
	return &CalloutTranslation{icons: copied}
}

// Icon returns the icon markup for kind, falling back to the note icon.
func (t *CalloutTranslation) Icon(kind string) string {
	if icon, ok := t.icons[kind]; ok {
		return icon
	}
	return t.icons[DefaultCalloutKind]
}

// TranslateCallouts replaces every callout block in content with its HTML form.
// Text outside callout blocks is unchanged, and an opening line inside a code
// block or code span is literal. Nested callouts are not supported: the first
// closing ::: line ends the block.
func (t *CalloutTranslation) TranslateCallouts(content string) string {
	regions := codeRegions(content)

	var b strings.Builder
	pos := 0
	for pos < len(content) {
		loc := calloutPattern.FindStringSubmatchIndex(content[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]

		// Resume after the code region so its closing ::: cannot pair with
		// an opener that follows it.
		if end, ok := regionEnd(regions, start); ok {
			b.WriteString(content[pos:end])
			pos = end
			continue
		}
		// ^ also matches at the start of the search window.
		if start > 0 && content[start-1] != '\n' {
			next := lineEnd(content, start)
			b.WriteString(content[pos:next])
			pos = next
			continue
		}

		window := content[pos:]
		c := Callout{Kind: window[loc[2]:loc[3]], Body: window[loc[6]:loc[7]]}
		if loc[4] >= 0 {
			c.Title = window[loc[4]:loc[5]]
		}
		b.WriteString(content[pos:start])
		b.WriteString(t.render(c))
		pos += loc[1]
	}
	b.WriteString(content[pos:])
	return b.String()
}

// regionEnd returns the end of the code region containing offset.
func regionEnd(regions [][2]int, offset int) (int, bool) {
	for _, r := range regions {
		if r[0] <= offset && offset < r[1] {
			return r[1], true
		}
	}
	return 0, false
}

// lineEnd returns the offset just past the newline ending the line at offset.
func lineEnd(content string, offset int) int {
	if i := strings.IndexByte(content[offset:], '\n'); i != -1 {
		return offset + i + 1
	}
	return len(content)
}

// render writes the HTML for a callout. The body is surrounded by blank
// lines so that Goldmark ends the raw HTML block and parses the body as
// Markdown.
func (t *CalloutTranslation) render(c Callout) string {
	var b strings.Builder
	b.WriteString(`<div class="qmd-callout qmd-callout-`)
	b.WriteString(c.Kind)
	b.WriteString("\">\n")
	b.WriteString(`<div class="qmd-callout-header"><span class="qmd-callout-icon">`)
	b.WriteString(singleLine(t.Icon(c.Kind)))
	b.WriteString(`</span> `)
	b.WriteString(html.EscapeString(c.DisplayTitle()))
	b.WriteString("</div>\n")
	b.WriteString("<div class=\"qmd-callout-body\">\n\n")
	b.WriteString(strings.TrimSuffix(c.Body, "\n"))
	b.WriteString("\n\n</div>\n</div>")
	return b.String()
}

// singleLine collapses icon markup onto one line. A blank line inside the
// header would end Goldmark's HTML block early.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
