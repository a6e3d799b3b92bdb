package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/fileutil"
)

// runWatch converts every document once, then reconverts documents as they
// change until the context is cancelled.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseWatchFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}

	setup, err := prepareConvert(&flags.convertFlags, positional, env)
	if err != nil {
		return err
	}

	debounce := time.Duration(setup.cfg.Watch.DebounceMs) * time.Millisecond
	if flags.debounce != "" {
		d, err := time.ParseDuration(flags.debounce)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --debounce %q", ErrUsage, flags.debounce)
		}
		debounce = d
	}

	info, err := os.Stat(setup.inputPath)
	if err != nil {
		return err
	}
	root, only := setup.inputPath, ""
	if !info.IsDir() {
		if err := validateSourceExtension(setup.inputPath); err != nil {
			return err
		}
		root, only = filepath.Dir(setup.inputPath), filepath.Clean(setup.inputPath)
	}

	logger := newLogger(setup.cfg.Log, env.Stderr, flags.common.quiet, flags.common.verbose)
	defer setMaxProcs(logger)()

	pool := qmd.NewConverterPool(qmd.ResolvePoolSize(setup.workers), converterOptions(setup.cfg, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "error", err)
		}
	}()
	adapter := &poolAdapter{pool: pool}

	outputDir := setup.cfg.Output.DefaultDir
	ext := outputExt(setup.cfg.Output)
	baseDir := ""
	if only == "" {
		baseDir = root
	}

	convert := func(files []FileToConvert) {
		results := convertBatch(ctx, adapter, files, setup.params)
		printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	}

	initial, err := discoverFiles(setup.inputPath, outputDir, ext)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	convert(initial)

	return watchSources(ctx, root, debounce, logger, func(paths []string) {
		files := changedFiles(paths, only, outputDir, baseDir, ext)
		if len(files) > 0 {
			convert(files)
		}
	})
}

// changedFiles maps changed sources to conversion jobs. When only is set,
// every other file is ignored.
func changedFiles(paths []string, only, outputDir, baseDir, ext string) []FileToConvert {
	files := make([]FileToConvert, 0, len(paths))
	for _, p := range paths {
		if only != "" && filepath.Clean(p) != only {
			continue
		}
		if !fileutil.FileExists(p) {
			continue
		}
		files = append(files, FileToConvert{
			InputPath:  p,
			OutputPath: resolveOutputPath(p, outputDir, baseDir, ext),
		})
	}
	return files
}
