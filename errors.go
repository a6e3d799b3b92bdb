package qmd

import (
	"errors"

	"github.com/alnah/go-qmd/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrNoMarkdownRenderer = errors.New("no markdown renderer configured")
	ErrNoMathRenderer     = errors.New("no math renderer configured")
	ErrMathRender         = errors.New("math rendering failed")
	ErrPDFGeneration      = errors.New("PDF generation failed")
	ErrBrowserConnect     = errors.New("failed to connect to browser")
	ErrPageCreate         = errors.New("failed to create browser page")
	ErrPageLoad           = errors.New("failed to load page")
	ErrPoolClosed         = errors.New("converter pool is closed")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")

	// Asset loading errors.
	ErrInvalidAssetPath = errors.New("invalid asset path")
)

// ErrPlaceholderIndex is returned in strict mode when a math placeholder
// refers to a block that does not exist.
var ErrPlaceholderIndex = pipeline.ErrPlaceholderIndex
