package pipeline

import (
	"context"
	"html"
	"strings"
)

// MathRenderer finds $$...$$ (display) and $...$ (inline) delimiters in an
// HTML fragment and replaces them with rendered math. Malformed math must be
// rendered as a visible marker, not returned as an error.
type MathRenderer interface {
	RenderMath(ctx context.Context, fragment string) (string, error)
}

// MarkupMathRenderer replaces math delimiters with MathJax/KaTeX-style
// markup: <span class="math display">\[...\]</span> and
// <span class="math inline">\(...\)</span>. The TeX is kept as escaped text
// for a client-side typesetter or the KaTeX renderer.
//
// Markup is skipped whole, as is the content of pre, code, script, style and
// textarea elements. A dollar written as &#36; is text, never a delimiter.
type MarkupMathRenderer struct{}

// Compile-time interface check.
var _ MathRenderer = (*MarkupMathRenderer)(nil)

// NewMarkupMathRenderer creates a MarkupMathRenderer.
func NewMarkupMathRenderer() *MarkupMathRenderer {
	return &MarkupMathRenderer{}
}

// RenderMath implements MathRenderer.
func (r *MarkupMathRenderer) RenderMath(ctx context.Context, fragment string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return renderMathMarkup(fragment), nil
}

// Math span classes, shared with the KaTeX renderer and the stylesheet.
const (
	MathDisplayClass = "math display"
	MathInlineClass  = "math inline"
	MathErrorClass   = "math-error"
)

// rawTextElements hold content that never contains math.
var rawTextElements = []string{"pre", "code", "script", "style", "textarea"}

// renderMathMarkup scans fragment once, left to right. Text is checked for
// delimiters before markup so that TeX like $a<b$ is not mistaken for a tag.
func renderMathMarkup(fragment string) string {
	var b strings.Builder
	b.Grow(len(fragment))

	s := fragment
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '<' && isMarkupStart(s, i):
			end := skipMarkup(s, i)
			b.WriteString(s[i:end])
			i = end

		case strings.HasPrefix(s[i:], "$$"):
			closing := findMathClose(s, i+2, "$$", false)
			switch {
			case closing == -1:
				b.WriteString(`<span class="` + MathErrorClass + `" title="unterminated display math">$$</span>`)
				i += 2
			case closing == i+2:
				// $$$$ holds no math
				b.WriteString("$$$$")
				i += 4
			default:
				writeMathSpan(&b, MathDisplayClass, `\[`, s[i+2:closing], `\]`)
				i = closing + 2
			}

		case s[i] == '$':
			closing := findMathClose(s, i+1, "$", true)
			if closing == -1 || closing == i+1 {
				b.WriteByte('$')
				i++
				continue
			}
			writeMathSpan(&b, MathInlineClass, `\(`, s[i+1:closing], `\)`)
			i = closing + 1

		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// writeMathSpan writes one math span. TeX may arrive raw (restored from a
// placeholder) or entity-encoded (plain text that Goldmark escaped), so it is
// normalized before escaping.
func writeMathSpan(b *strings.Builder, class, opener, tex, closer string) {
	b.WriteString(`<span class="`)
	b.WriteString(class)
	b.WriteString(`">`)
	b.WriteString(opener)
	b.WriteString(html.EscapeString(html.UnescapeString(tex)))
	b.WriteString(closer)
	b.WriteString(`</span>`)
}

// findMathClose returns the index of the closing delimiter at or after from,
// or -1. Backslash-escaped characters are skipped. For inline math the search
// stops at a newline.
func findMathClose(s string, from int, delim string, singleLine bool) int {
	for j := from; j < len(s); j++ {
		switch {
		case s[j] == '\\':
			j++
		case singleLine && s[j] == '\n':
			return -1
		case strings.HasPrefix(s[j:], delim):
			return j
		}
	}
	return -1
}

// isMarkupStart reports whether the '<' at i opens a tag, end tag or comment
// rather than being a stray less-than sign.
func isMarkupStart(s string, i int) bool {
	if i+1 >= len(s) {
		return false
	}
	c := s[i+1]
	return c == '/' || c == '!' || c == '?' || isASCIILetter(c)
}

// skipMarkup returns the index just past the markup starting at i. For
// raw-text elements the whole element, content included, is skipped.
func skipMarkup(s string, i int) int {
	if strings.HasPrefix(s[i:], "<!--") {
		if end := strings.Index(s[i+4:], "-->"); end != -1 {
			return i + 4 + end + 3
		}
		return len(s)
	}

	tagEnd := strings.IndexByte(s[i:], '>')
	if tagEnd == -1 {
		return len(s)
	}
	tagEnd += i + 1

	name := tagName(s[i+1:])
	for _, raw := range rawTextElements {
		if name != raw {
			continue
		}
		closeTag := "</" + raw
		idx := strings.Index(strings.ToLower(s[tagEnd:]), closeTag)
		if idx == -1 {
			return len(s)
		}
		end := strings.IndexByte(s[tagEnd+idx:], '>')
		if end == -1 {
			return len(s)
		}
		return tagEnd + idx + end + 1
	}
	return tagEnd
}

// tagName returns the lowercase element name at the start of s, or "" for
// end tags and declarations.
func tagName(s string) string {
	n := 0
	for n < len(s) && (isASCIILetter(s[n]) || (n > 0 && s[n] >= '0' && s[n] <= '9')) {
		n++
	}
	return strings.ToLower(s[:n])
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
