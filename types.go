package qmd

import (
	"fmt"
	"strings"

	"github.com/alnah/go-qmd/internal/pipeline"
	"github.com/alnah/go-qmd/internal/yamlutil"
)

// Pipeline collaborators that callers may replace.
type (
	// Metadata is the ordered key/value mapping read from front matter.
	Metadata = pipeline.Metadata

	// MarkdownRenderer converts Markdown to an HTML fragment.
	MarkdownRenderer = pipeline.MarkdownRenderer

	// MathRenderer typesets the $...$ and $$...$$ spans of an HTML fragment.
	MathRenderer = pipeline.MathRenderer

	// Highlighter renders the code of one fenced block.
	Highlighter = pipeline.Highlighter
)

// SourceExt is the extension of QMD documents.
const SourceExt = pipeline.SourceExt

// Input contains conversion parameters.
type Input struct {
	Source     string        // Raw QMD text (required)
	CSS        string        // Extra CSS appended to the standalone page (optional)
	Standalone bool          // Also build a complete HTML page
	PDF        bool          // Also print the page to PDF (implies Standalone)
	SourcePath string        // Path of the source file, for relative images and links
	LinkExt    string        // Replaces .qmd in relative links, e.g. ".html"
	Page       *PageSettings // PDF page settings (optional, nil = defaults)
}

// Result is the output of one conversion.
type Result struct {
	Fragment string    // Rendered fragment wrapped in #qmd-rendered-content
	Metadata *Metadata // Front matter, with date keywords resolved
	HTML     []byte    // Standalone page, when requested
	PDF      []byte    // PDF bytes, when requested
}

// MetadataYAML encodes the metadata as a YAML mapping in document order.
func (r *Result) MetadataYAML() ([]byte, error) {
	keys := r.Metadata.Keys()
	pairs := make([]yamlutil.Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, yamlutil.Pair{Key: k, Value: r.Metadata.Value(k)})
	}
	return yamlutil.MarshalOrdered(pairs)
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if !isValidPageSize(p.Size) {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if !isValidOrientation(p.Orientation) {
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

func isValidPageSize(size string) bool {
	_, ok := pageDimensions[strings.ToLower(size)]
	return ok
}

func isValidOrientation(orientation string) bool {
	switch strings.ToLower(orientation) {
	case OrientationPortrait, OrientationLandscape:
		return true
	}
	return false
}
