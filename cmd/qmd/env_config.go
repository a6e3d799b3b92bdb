package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-qmd/internal/config"
)

// envPrefix marks the environment variables the CLI reads.
const envPrefix = "QMD_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
// A .env file in the working directory is loaded first (godotenv).
type envConfig struct {
	ConfigPath string        // QMD_CONFIG: config file name or path
	Timeout    time.Duration // QMD_TIMEOUT: browser timeout
	Workers    int           // QMD_WORKERS: parallel workers

	InputDir  string // QMD_INPUT_DIR: default input directory
	OutputDir string // QMD_OUTPUT_DIR: default output directory
	AssetPath string // QMD_ASSET_PATH: custom asset directory

	MathRenderer   string // QMD_MATH_RENDERER: markup, katex
	HighlightStyle string // QMD_HIGHLIGHT_STYLE: chroma style name
	PageSize       string // QMD_PAGE_SIZE: letter, a4, legal

	LogLevel   string // QMD_LOG_LEVEL: debug, info, warn, error
	LogFormat  string // QMD_LOG_FORMAT: text, json
	ServerPort int    // QMD_SERVER_PORT: preview server port
}

// knownEnvVars lists valid QMD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"QMD_CONFIG":          true,
	"QMD_TIMEOUT":         true,
	"QMD_WORKERS":         true,
	"QMD_INPUT_DIR":       true,
	"QMD_OUTPUT_DIR":      true,
	"QMD_ASSET_PATH":      true,
	"QMD_MATH_RENDERER":   true,
	"QMD_HIGHLIGHT_STYLE": true,
	"QMD_PAGE_SIZE":       true,
	"QMD_LOG_LEVEL":       true,
	"QMD_LOG_FORMAT":      true,
	"QMD_SERVER_PORT":     true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:     getenv("QMD_CONFIG"),
		InputDir:       getenv("QMD_INPUT_DIR"),
		OutputDir:      getenv("QMD_OUTPUT_DIR"),
		AssetPath:      getenv("QMD_ASSET_PATH"),
		MathRenderer:   getenv("QMD_MATH_RENDERER"),
		HighlightStyle: getenv("QMD_HIGHLIGHT_STYLE"),
		PageSize:       getenv("QMD_PAGE_SIZE"),
		LogLevel:       getenv("QMD_LOG_LEVEL"),
		LogFormat:      getenv("QMD_LOG_FORMAT"),
	}

	if timeout := getenv("QMD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if workers := getenv("QMD_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}
	if port := getenv("QMD_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			cfg.ServerPort = p
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized QMD_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config file values with environment values.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.AssetPath != "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.MathRenderer != "" {
		cfg.Math.Renderer = env.MathRenderer
	}
	if env.HighlightStyle != "" {
		cfg.Render.HighlightStyle = env.HighlightStyle
	}
	if env.PageSize != "" {
		cfg.Page.Size = env.PageSize
	}
	if env.Timeout > 0 {
		cfg.Render.TimeoutSeconds = max(1, int(env.Timeout.Round(time.Second)/time.Second))
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.ServerPort > 0 {
		cfg.Server.Port = env.ServerPort
	}
}
