package qmd

import (
	"log/slog"
	"time"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout            time.Duration
	assetPath          string
	highlightStyle     string
	highlighter        Highlighter
	hardWraps          bool
	strictPlaceholders bool
	typesetMath        bool
	katex              KaTeXURLs
	now                func() time.Time
}

const (
	// defaultTimeout is used when no timeout is specified.
	defaultTimeout = 30 * time.Second

	// DefaultHighlightStyle is the chroma style of the built-in stylesheet.
	DefaultHighlightStyle = "github"
)

// WithTimeout sets the browser page load timeout for PDF export and KaTeX.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("qmd: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithAssetPath loads styles, templates and icons from dir, falling back to
// the built-in assets for any file dir does not provide.
func WithAssetPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = dir
	}
}

// WithLogger sets the logger. Conversions log nothing by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow sets the clock used to resolve date keywords such as "today".
func WithNow(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.cfg.now = now
		}
	}
}

// WithHighlightStyle selects the chroma style of code blocks.
func WithHighlightStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.highlightStyle = name
	}
}

// WithHighlighter renders fenced code blocks with h instead of the built-in
// highlighter. Ignored when WithMarkdownRenderer is also given.
func WithHighlighter(h Highlighter) Option {
	return func(c *Converter) {
		c.cfg.highlighter = h
	}
}

// WithHardWraps controls whether a single newline becomes a line break.
// Enabled by default.
func WithHardWraps(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.hardWraps = enabled
	}
}

// WithMarkdownRenderer replaces the Goldmark renderer.
func WithMarkdownRenderer(r MarkdownRenderer) Option {
	return func(c *Converter) {
		c.markdown = r
		c.markdownSet = true
	}
}

// WithMathRenderer replaces the math renderer. The default emits markup
// that KaTeX typesets in the reader's browser; see NewKaTeXRenderer for
// server-side typesetting.
func WithMathRenderer(r MathRenderer) Option {
	return func(c *Converter) {
		c.math = r
		c.mathSet = true
	}
}

// WithKaTeXURLs sets the KaTeX stylesheet and scripts linked from standalone
// pages.
func WithKaTeXURLs(urls KaTeXURLs) Option {
	return func(c *Converter) {
		c.cfg.katex = urls
	}
}

// WithStrictPlaceholders makes Convert fail with ErrPlaceholderIndex when a
// math placeholder cannot be restored. By default the failure is logged and
// the placeholder is left in the output.
func WithStrictPlaceholders() Option {
	return func(c *Converter) {
		c.cfg.strictPlaceholders = true
	}
}

// WithKaTeXTypesetting makes each Converter typeset math with its own
// KaTeXRenderer, so pooled converters never share a browser. Ignored when
// WithMathRenderer is also given.
func WithKaTeXTypesetting() Option {
	return func(c *Converter) {
		c.cfg.typesetMath = true
	}
}
