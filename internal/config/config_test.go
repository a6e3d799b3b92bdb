package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Input.DefaultDir != "" {
		t.Errorf("Input.DefaultDir = %q, want empty", cfg.Input.DefaultDir)
	}
	if cfg.Output.Standalone || cfg.Output.PDF {
		t.Error("default output should be a fragment")
	}
	if cfg.Math.Renderer != MathRendererMarkup {
		t.Errorf("Math.Renderer = %q, want %q", cfg.Math.Renderer, MathRendererMarkup)
	}
	if cfg.Render.HardWraps != nil {
		t.Error("Render.HardWraps should be unset")
	}
	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("Server.Addr() = %q, want 127.0.0.1:8080", cfg.Server.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Section Validation
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		mutate     func(*Config)
		wantErr    bool
		wantInMsgs string
	}{
		{
			name:   "zero config is valid",
			mutate: func(c *Config) { *c = Config{} },
		},
		{
			name:   "katex renderer",
			mutate: func(c *Config) { c.Math.Renderer = MathRendererKaTeX },
		},
		{
			name:       "unknown math renderer",
			mutate:     func(c *Config) { c.Math.Renderer = "mathjax" },
			wantErr:    true,
			wantInMsgs: "math",
		},
		{
			name:   "page values are case insensitive",
			mutate: func(c *Config) { c.Page.Size = "A4"; c.Page.Orientation = "Landscape" },
		},
		{
			name:       "unknown page size",
			mutate:     func(c *Config) { c.Page.Size = "a5" },
			wantErr:    true,
			wantInMsgs: "page",
		},
		{
			name:       "unknown orientation",
			mutate:     func(c *Config) { c.Page.Orientation = "diagonal" },
			wantErr:    true,
			wantInMsgs: "page",
		},
		{
			name:       "margin below minimum",
			mutate:     func(c *Config) { c.Page.Margin = 0.1 },
			wantErr:    true,
			wantInMsgs: "page",
		},
		{
			name:       "margin above maximum",
			mutate:     func(c *Config) { c.Page.Margin = 3.5 },
			wantErr:    true,
			wantInMsgs: "page",
		},
		{
			name:       "unknown log level",
			mutate:     func(c *Config) { c.Log.Level = "trace" },
			wantErr:    true,
			wantInMsgs: "log",
		},
		{
			name:       "unknown log format",
			mutate:     func(c *Config) { c.Log.Format = "xml" },
			wantErr:    true,
			wantInMsgs: "log",
		},
		{
			name:       "port out of range",
			mutate:     func(c *Config) { c.Server.Port = 70000 },
			wantErr:    true,
			wantInMsgs: "server",
		},
		{
			name:       "debounce too short",
			mutate:     func(c *Config) { c.Watch.DebounceMs = 1 },
			wantErr:    true,
			wantInMsgs: "watch",
		},
		{
			name:       "timeout too long",
			mutate:     func(c *Config) { c.Render.TimeoutSeconds = 3600 },
			wantErr:    true,
			wantInMsgs: "render",
		},
		{
			name:   "link extension with dot",
			mutate: func(c *Config) { c.Output.LinkExt = ".html" },
		},
		{
			name:       "link extension without dot",
			mutate:     func(c *Config) { c.Output.LinkExt = "html" },
			wantErr:    true,
			wantInMsgs: "output",
		},
		{
			name:       "asset path too long",
			mutate:     func(c *Config) { c.Assets.BasePath = strings.Repeat("a", MaxPathLength+1) },
			wantErr:    true,
			wantInMsgs: "assets",
		},
		{
			name:       "katex url too long",
			mutate:     func(c *Config) { c.Math.Script = "https://" + strings.Repeat("a", MaxURLLength) },
			wantErr:    true,
			wantInMsgs: "math",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("Validate() = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantInMsgs) {
				t.Errorf("Validate() = %q, want mention of %q", err, tt.wantInMsgs)
			}
		})
	}
}

func TestLogConfig_SlogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			if got := (LogConfig{Level: tt.level}).SlogLevel(); got != tt.want {
				t.Errorf("SlogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - Loading From Disk
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "qmd.yaml", `output:
  standalone: true
  linkExt: ".html"
math:
  renderer: katex
render:
  highlightStyle: monokai
  hardWraps: false
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if !cfg.Output.Standalone {
			t.Error("Output.Standalone = false, want true")
		}
		if cfg.Output.LinkExt != ".html" {
			t.Errorf("Output.LinkExt = %q, want .html", cfg.Output.LinkExt)
		}
		if cfg.Math.Renderer != MathRendererKaTeX {
			t.Errorf("Math.Renderer = %q, want katex", cfg.Math.Renderer)
		}
		if cfg.Render.HighlightStyle != "monokai" {
			t.Errorf("Render.HighlightStyle = %q, want monokai", cfg.Render.HighlightStyle)
		}
		if cfg.Render.HardWraps == nil || *cfg.Render.HardWraps {
			t.Error("Render.HardWraps should be set to false")
		}
	})

	t.Run("missing sections keep defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "qmd.yaml", "server:\n  port: 9000\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Port != 9000 {
			t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
		}
		if cfg.Server.Host != "127.0.0.1" {
			t.Errorf("Server.Host = %q, want default", cfg.Server.Host)
		}
		if cfg.Watch.DebounceMs != 200 {
			t.Errorf("Watch.DebounceMs = %d, want default 200", cfg.Watch.DebounceMs)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("/nonexistent/path/config.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
		var notFound *NotFoundError
		if !errors.As(err, &notFound) || len(notFound.Paths) != 1 || notFound.Paths[0] != "/nonexistent/path/config.yaml" {
			t.Errorf("error = %#v, want NotFoundError for the given path", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "invalid.yaml", "math: [unclosed")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse in strict mode", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "unknown.yaml", "footer:\n  enabled: true\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid values return ErrInvalidConfig", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "page:\n  size: tabloid\n")
		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "work.yml", "log:\n  format: json\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("work")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Log.Format != LogFormatJSON {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}

	_, err = LoadConfig("missing")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("error %q should list tried paths", err)
	}

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T, want *NotFoundError", err)
	}
	if len(notFound.Paths) < 2 || notFound.Paths[0] != "missing.yaml" || notFound.Paths[1] != "missing.yml" {
		t.Errorf("Paths = %v, want local candidates first", notFound.Paths)
	}
}
