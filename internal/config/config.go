package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-qmd/internal/fileutil"
	"github.com/alnah/go-qmd/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// NotFoundError lists the paths searched for a missing config file.
type NotFoundError struct {
	Paths []string
}

func (e *NotFoundError) Error() string {
	if len(e.Paths) == 1 {
		return ErrConfigNotFound.Error() + ": " + e.Paths[0]
	}
	return ErrConfigNotFound.Error() + ": tried " + strings.Join(e.Paths, ", ")
}

// Unwrap lets errors.Is match ErrConfigNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrConfigNotFound
}

// Field length limits.
const (
	MaxPathLength  = 4096
	MaxURLLength   = 2048
	MaxNameLength  = 100
	MaxLinkExtSize = 16
)

// Accepted enumerations.
const (
	MathRendererMarkup = "markup"
	MathRendererKaTeX  = "katex"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration for document conversion.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Assets AssetsConfig `yaml:"assets"`
	Render RenderConfig `yaml:"render"`
	Math   MathConfig   `yaml:"math"`
	Page   PageConfig   `yaml:"page"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"`
}

func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultDir, validation.Length(0, MaxPathLength)),
	)
}

// OutputConfig defines what each conversion writes.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"`
	Standalone bool   `yaml:"standalone"` // full HTML page instead of a fragment
	PDF        bool   `yaml:"pdf"`        // also print a PDF next to the page
	Metadata   bool   `yaml:"metadata"`   // also export front matter as YAML
	LinkExt    string `yaml:"linkExt"`    // replaces .qmd in relative links
}

func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultDir, validation.Length(0, MaxPathLength)),
		validation.Field(&c.LinkExt,
			validation.Length(0, MaxLinkExtSize),
			validation.By(startsWithDot),
		),
	)
}

// AssetsConfig points at a directory overriding the built-in assets.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"`
}

func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BasePath, validation.Length(0, MaxPathLength)),
	)
}

// RenderConfig tunes the Markdown stage.
type RenderConfig struct {
	HighlightStyle     string `yaml:"highlightStyle"`
	HardWraps          *bool  `yaml:"hardWraps"` // nil keeps the default (enabled)
	StrictPlaceholders bool   `yaml:"strictPlaceholders"`
	TimeoutSeconds     int    `yaml:"timeoutSeconds"`
}

func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightStyle, validation.Length(0, MaxNameLength)),
		validation.Field(&c.TimeoutSeconds, validation.Min(1), validation.Max(600)),
	)
}

// MathConfig selects the math renderer and where KaTeX is loaded from.
type MathConfig struct {
	Renderer   string `yaml:"renderer"` // markup, katex
	Stylesheet string `yaml:"stylesheet"`
	Script     string `yaml:"script"`
	AutoRender string `yaml:"autoRender"`
}

func (c *MathConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Renderer, validation.In(MathRendererMarkup, MathRendererKaTeX)),
		validation.Field(&c.Stylesheet, validation.Length(0, MaxURLLength)),
		validation.Field(&c.Script, validation.Length(0, MaxURLLength)),
		validation.Field(&c.AutoRender, validation.Length(0, MaxURLLength)),
	)
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size        string  `yaml:"size"`        // letter, a4, legal
	Orientation string  `yaml:"orientation"` // portrait, landscape
	Margin      float64 `yaml:"margin"`      // inches
}

func (c *PageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Size, validation.By(lowerIn("letter", "a4", "legal"))),
		validation.Field(&c.Orientation, validation.By(lowerIn("portrait", "landscape"))),
		validation.Field(&c.Margin, validation.Min(0.25), validation.Max(3.0)),
	)
}

// LogConfig selects the level and handler of the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Level, validation.By(lowerIn("debug", "info", "warn", "error"))),
		validation.Field(&c.Format, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// SlogLevel maps Level to a slog level. Empty means info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Root string `yaml:"root"` // directory served under /preview/
}

func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Length(0, MaxNameLength)),
		validation.Field(&c.Port, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Root, validation.Length(0, MaxPathLength)),
	)
}

// Addr returns host:port for net.Listen.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounceMs"`
}

func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DebounceMs, validation.Min(10), validation.Max(10000)),
	)
}

// Validate checks every section and reports the first invalid one.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"input", &c.Input},
		{"output", &c.Output},
		{"assets", &c.Assets},
		{"render", &c.Render},
		{"math", &c.Math},
		{"page", &c.Page},
		{"log", &c.Log},
		{"server", &c.Server},
		{"watch", &c.Watch},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, s.name, err)
		}
	}
	return nil
}

// startsWithDot rejects link extensions written without the leading dot.
func startsWithDot(value interface{}) error {
	s, _ := value.(string)
	if s != "" && !strings.HasPrefix(s, ".") {
		return errors.New("must start with a dot")
	}
	return nil
}

// lowerIn is validation.In with case-insensitive matching.
func lowerIn(allowed ...string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		for _, a := range allowed {
			if strings.EqualFold(s, a) {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// DefaultConfig returns a neutral config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Math: MathConfig{
			Renderer: MathRendererMarkup,
		},
		Page: PageConfig{
			Size:        "letter",
			Orientation: "portrait",
			Margin:      0.5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Root: ".",
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it searches for the config in standard locations.
// Sections the file leaves out keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Paths: []string{configPath}}
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-qmd/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-qmd", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Paths: triedPaths}
}
