package main

import (
	"cmp"
	"context"
	"fmt"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/config"
	"github.com/alnah/go-qmd/internal/hints"
)

// convertSetup is the resolved state shared by convert and watch.
type convertSetup struct {
	cfg       *config.Config
	params    *conversionParams
	inputPath string
	workers   int
}

// prepareConvert resolves config, flags and parameters for a conversion run.
func prepareConvert(flags *convertFlags, positional []string, env *Environment) (*convertSetup, error) {
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	cfg, envCfg, err := loadConfig(flags.common, env)
	if err != nil {
		return nil, err
	}
	if err := mergeConvertFlags(flags, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return nil, err
	}

	css, err := readCSS(flags.out.css)
	if err != nil {
		return nil, err
	}

	params := &conversionParams{
		css:        css,
		standalone: cfg.Output.Standalone,
		pdf:        cfg.Output.PDF,
		metadata:   cfg.Output.Metadata,
		linkExt:    cfg.Output.LinkExt,
	}
	if params.pdf {
		if params.page, err = buildPageSettings(cfg); err != nil {
			return nil, err
		}
	}

	return &convertSetup{
		cfg:       cfg,
		params:    params,
		inputPath: inputPath,
		workers:   cmp.Or(flags.workers, envCfg.Workers),
	}, nil
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}

	setup, err := prepareConvert(flags, positional, env)
	if err != nil {
		return err
	}

	logger := newLogger(setup.cfg.Log, env.Stderr, flags.common.quiet, flags.common.verbose)
	defer setMaxProcs(logger)()

	files, err := discoverFiles(setup.inputPath, setup.cfg.Output.DefaultDir, outputExt(setup.cfg.Output))
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s%s", ErrNoDocuments, setup.inputPath, hints.ForNoDocuments())
	}

	poolSize := qmd.ResolvePoolSize(setup.workers)
	logger.Debug("converting", "files", len(files), "workers", poolSize)

	pool := qmd.NewConverterPool(poolSize, converterOptions(setup.cfg, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "error", err)
		}
	}()

	results := convertBatch(ctx, &poolAdapter{pool: pool}, files, setup.params)

	summary := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if summary.Failed > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", summary.Failed, summary.FirstErr)
	}
	return nil
}
