package main

import (
	"errors"
	"os"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/config"
)

// Exit codes for the qmd CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, qmd.ErrBrowserConnect) ||
		errors.Is(err, qmd.ErrPageCreate) ||
		errors.Is(err, qmd.ErrPageLoad) ||
		errors.Is(err, qmd.ErrPDFGeneration) ||
		errors.Is(err, qmd.ErrMathRender) {
		return ExitBrowser
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadSource) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitIO
	}

	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, ErrEmptySource) ||
		errors.Is(err, qmd.ErrInvalidPageSize) ||
		errors.Is(err, qmd.ErrInvalidOrientation) ||
		errors.Is(err, qmd.ErrInvalidMargin) ||
		errors.Is(err, qmd.ErrInvalidAssetPath) ||
		errors.Is(err, qmd.ErrPlaceholderIndex) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}
