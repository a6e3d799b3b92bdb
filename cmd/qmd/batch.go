package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/fileutil"
	"github.com/alnah/go-qmd/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadSource      = errors.New("failed to read source file")
	ErrEmptySource     = errors.New("source file is empty")
	ErrWriteOutput     = errors.New("failed to write output file")
	ErrConverterCreate = errors.New("failed to create converter")
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	css        string
	standalone bool
	pdf        bool
	metadata   bool
	linkExt    string
	page       *qmd.PageSettings
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath    string
	OutputPath   string
	MetadataPath string
	Err          error
	Duration     time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results are in the order of files.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       fmt.Errorf("%w: %v", ErrConverterCreate, err),
					}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadSource, err))
	}
	if len(content) == 0 {
		return fail(ErrEmptySource)
	}

	sourcePath, err := filepath.Abs(f.InputPath)
	if err != nil {
		sourcePath = f.InputPath
	}

	res, err := conv.Convert(ctx, qmd.Input{
		Source:     string(content),
		CSS:        params.css,
		Standalone: params.standalone,
		PDF:        params.pdf,
		SourcePath: sourcePath,
		LinkExt:    params.linkExt,
		Page:       params.page,
	})
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %v%s", ErrWriteOutput, err, hints.ForOutputDirectory()))
	}

	var data []byte
	switch {
	case params.pdf:
		data = res.PDF
	case params.standalone:
		data = res.HTML
	default:
		data = []byte(res.Fragment)
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, data, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	if params.metadata {
		yml, err := res.MetadataYAML()
		if err != nil {
			return fail(fmt.Errorf("encoding metadata: %w", err))
		}
		metaPath := fileutil.ReplaceExt(f.OutputPath, ".yaml")
		if err := fileutil.WriteFileAtomic(metaPath, yml, filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		result.MetadataPath = metaPath
	}

	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	FirstErr  error
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			if summary.FirstErr == nil {
				summary.FirstErr = r.Err
			}
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) ResultSummary {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.MetadataPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.MetadataPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary
}
