package main

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/config"
)

// Sentinel errors for settings resolution.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrReadCSS        = errors.New("failed to read CSS file")
)

// loadConfig resolves configuration from defaults, the config file and the
// environment, in increasing priority. Flags are merged by the caller.
func loadConfig(common commonFlags, env *Environment) (*config.Config, *envConfig, error) {
	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Stderr, env.Environ())

	cfg := config.DefaultConfig()
	if name := cmp.Or(common.config, envCfg.ConfigPath); name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, envCfg, nil
}

// mergeRenderFlags merges pipeline flags into config. CLI values win.
func mergeRenderFlags(f *renderFlags, cfg *config.Config) error {
	if f.assetPath != "" {
		cfg.Assets.BasePath = f.assetPath
	}
	if f.math != "" {
		cfg.Math.Renderer = f.math
	}
	if f.katexURL != "" {
		urls := qmd.KaTeXURLsFrom(f.katexURL)
		cfg.Math.Stylesheet = urls.Stylesheet
		cfg.Math.Script = urls.Script
		cfg.Math.AutoRender = urls.AutoRender
	}
	if f.highlightStyle != "" {
		cfg.Render.HighlightStyle = f.highlightStyle
	}
	if f.noHardWraps {
		off := false
		cfg.Render.HardWraps = &off
	}
	if f.strict {
		cfg.Render.StrictPlaceholders = true
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q (use a positive duration such as 30s or 2m)", ErrInvalidTimeout, f.timeout)
		}
		cfg.Render.TimeoutSeconds = max(1, int(d.Round(time.Second)/time.Second))
	}
	return nil
}

// mergeConvertFlags merges convert flags into config. CLI values win.
func mergeConvertFlags(f *convertFlags, cfg *config.Config) error {
	if err := mergeRenderFlags(&f.render, cfg); err != nil {
		return err
	}
	if f.output != "" {
		cfg.Output.DefaultDir = f.output
	}
	if f.out.standalone {
		cfg.Output.Standalone = true
	}
	if f.out.pdf {
		cfg.Output.PDF = true
	}
	if f.out.metadata {
		cfg.Output.Metadata = true
	}
	if f.out.linkExt != "" {
		cfg.Output.LinkExt = f.out.linkExt
	}
	if f.page.size != "" {
		cfg.Page.Size = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Page.Orientation = f.page.orientation
	}
	if f.page.margin != 0 {
		cfg.Page.Margin = f.page.margin
	}
	return nil
}

// converterOptions translates config into Converter options.
func converterOptions(cfg *config.Config, logger *slog.Logger) []qmd.Option {
	opts := []qmd.Option{qmd.WithLogger(logger)}

	if cfg.Render.TimeoutSeconds > 0 {
		opts = append(opts, qmd.WithTimeout(time.Duration(cfg.Render.TimeoutSeconds)*time.Second))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, qmd.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Render.HighlightStyle != "" {
		opts = append(opts, qmd.WithHighlightStyle(cfg.Render.HighlightStyle))
	}
	if cfg.Render.HardWraps != nil {
		opts = append(opts, qmd.WithHardWraps(*cfg.Render.HardWraps))
	}
	if cfg.Render.StrictPlaceholders {
		opts = append(opts, qmd.WithStrictPlaceholders())
	}

	urls := qmd.DefaultKaTeXURLs()
	urls.Stylesheet = cmp.Or(cfg.Math.Stylesheet, urls.Stylesheet)
	urls.Script = cmp.Or(cfg.Math.Script, urls.Script)
	urls.AutoRender = cmp.Or(cfg.Math.AutoRender, urls.AutoRender)
	opts = append(opts, qmd.WithKaTeXURLs(urls))

	if cfg.Math.Renderer == config.MathRendererKaTeX {
		opts = append(opts, qmd.WithKaTeXTypesetting())
	}
	return opts
}

// buildPageSettings builds PDF page settings from config, falling back to
// defaults for unset fields.
func buildPageSettings(cfg *config.Config) (*qmd.PageSettings, error) {
	page := qmd.DefaultPageSettings()
	page.Size = cmp.Or(cfg.Page.Size, page.Size)
	page.Orientation = cmp.Or(cfg.Page.Orientation, page.Orientation)
	page.Margin = cmp.Or(cfg.Page.Margin, page.Margin)

	if err := page.Validate(); err != nil {
		return nil, err
	}
	return page, nil
}

// readCSS returns the content of the --css file, or "" when none is given.
func readCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadCSS, err)
	}
	return string(data), nil
}
