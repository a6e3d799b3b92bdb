package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrHighlight indicates a code block could not be highlighted.
var ErrHighlight = errors.New("highlighting failed")

// Highlighter turns the source of one fenced code block into highlighted HTML.
// lang is the info-string language and may be empty. The returned markup is
// placed inside <pre><code>.
type Highlighter interface {
	Highlight(code, lang string) (string, error)
}

// ChromaHighlighter highlights code with chroma.
// The language is looked up by name first, then guessed from the content,
// then the code is emitted as plain text.
type ChromaHighlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// Compile-time interface check.
var _ Highlighter = (*ChromaHighlighter)(nil)

// NewChromaHighlighter creates a highlighter that emits CSS classes
// (see ChromaCSS) unless inline is true, in which case styleName is applied
// as inline styles. Unknown style names fall back to chroma's default.
func NewChromaHighlighter(styleName string, inline bool) *ChromaHighlighter {
	opts := []chromahtml.Option{chromahtml.PreventSurroundingPre(true)}
	if !inline {
		opts = append(opts, chromahtml.WithClasses(true))
	}
	return &ChromaHighlighter{
		formatter: chromahtml.New(opts...),
		style:     styles.Get(styleName),
	}
}

// Highlight implements Highlighter.
func (h *ChromaHighlighter) Highlight(code, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHighlight, err)
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHighlight, err)
	}
	return b.String(), nil
}

// ChromaCSS returns the stylesheet for class-based chroma output in the
// named style.
func ChromaCSS(styleName string) (string, error) {
	var b strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&b, styles.Get(styleName)); err != nil {
		return "", fmt.Errorf("writing chroma CSS: %w", err)
	}
	return b.String(), nil
}
