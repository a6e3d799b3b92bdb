package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// MarkdownRenderer abstracts Markdown to HTML fragment conversion.
type MarkdownRenderer interface {
	RenderMarkdown(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// Compile-time interface check.
var _ MarkdownRenderer = (*GoldmarkConverter)(nil)

// GoldmarkOption configures a GoldmarkConverter.
type GoldmarkOption func(*goldmarkConfig)

type goldmarkConfig struct {
	highlighter Highlighter
	hardWraps   bool
}

// WithHighlighter renders fenced code blocks with h instead of the built-in
// goldmark-highlighting extension.
func WithHighlighter(h Highlighter) GoldmarkOption {
	return func(c *goldmarkConfig) {
		c.highlighter = h
	}
}

// WithHardWraps controls whether a single newline becomes <br>. Enabled by default.
func WithHardWraps(enabled bool) GoldmarkOption {
	return func(c *goldmarkConfig) {
		c.hardWraps = enabled
	}
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and syntax highlighting.
func NewGoldmarkConverter(opts ...GoldmarkOption) *GoldmarkConverter {
	cfg := goldmarkConfig{hardWraps: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	extensions := []goldmark.Extender{
		extension.GFM,      // Tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1] footnotes
	}
	if cfg.highlighter == nil {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithGuessLanguage(true),
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true), // CSS classes for smaller HTML and external stylesheet control
			),
		))
	}

	rendererOpts := []renderer.Option{
		html.WithXHTML(), // Self-closing tags
		// Callouts are translated to raw <div> blocks before conversion.
		html.WithUnsafe(),
	}
	if cfg.hardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	if cfg.highlighter != nil {
		rendererOpts = append(rendererOpts, renderer.WithNodeRenderers(
			util.Prioritized(&fencedCodeRenderer{highlighter: cfg.highlighter}, 100),
		))
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(), // Generate IDs for headings (required for TOC)
		),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkConverter{md: md}
}

// RenderMarkdown converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) RenderMarkdown(ctx context.Context, content string) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		pctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
		if err := c.md.Convert([]byte(content), &buf, parser.WithContext(pctx)); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// headingPlaceholders matches what the protect stages leave in heading text:
// whole math tokens and the single-rune markers.
var headingPlaceholders = regexp.MustCompile(
	"\uE002" + mathPlaceholderTag + "[0-9]+\uE003|[\uE000\uE001\uE004]")

// headingIDs generates heading IDs from the heading text without its
// placeholders, so an ID never depends on where math sits in the document.
type headingIDs struct {
	parser.IDs
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{IDs: parser.NewContext().IDs()}
}

// Generate implements parser.IDs.
func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	return h.IDs.Generate(headingPlaceholders.ReplaceAll(value, nil), kind)
}

// fencedCodeRenderer renders fenced code blocks through a Highlighter.
// If highlighting fails the code is written escaped and unhighlighted.
type fencedCodeRenderer struct {
	highlighter Highlighter
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *fencedCodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *fencedCodeRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	lang := string(n.Language(source))
	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	_, _ = w.WriteString(`<pre class="chroma"><code`)
	if lang != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(lang)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(">")

	highlighted, err := r.highlighter.Highlight(code.String(), lang)
	if err != nil {
		_, _ = w.Write(util.EscapeHTML(code.Bytes()))
	} else {
		_, _ = w.WriteString(highlighted)
	}

	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}
