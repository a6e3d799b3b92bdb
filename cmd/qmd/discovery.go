package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/config"
	"github.com/alnah/go-qmd/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoDocuments        = errors.New("no .qmd documents found")
	ErrInvalidExtension   = errors.New("file must have .qmd extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// outputExt returns the extension of the primary output file.
func outputExt(out config.OutputConfig) string {
	if out.PDF {
		return ".pdf"
	}
	return ".html"
}

// resolveInputPath returns the positional input, or the configured default
// directory when none is given.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// discoverFiles finds all .qmd documents under inputPath.
func discoverFiles(inputPath, outputDir, ext string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateSourceExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "", ext)
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.HasExt(path, qmd.SourceExt) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath, ext)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the output path for a source file.
// An outputDir ending in ext names the output file directly; otherwise the
// directory layout below baseInputDir is mirrored under outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+ext)
	}

	if fileutil.HasExt(outputDir, ext) {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base+ext)
		}
	}

	return filepath.Join(outputDir, base+ext)
}

// validateSourceExtension checks that the file has the .qmd extension.
func validateSourceExtension(path string) error {
	if !fileutil.HasExt(path, qmd.SourceExt) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > qmd.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, qmd.MaxPoolSize)
	}
	return nil
}
