package main

import (
	"fmt"
	"io"
	"log/slog"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-qmd/internal/config"
)

// newLogger builds the CLI logger. --verbose lowers the level to debug and
// --quiet raises it to error, whatever the config says.
func newLogger(cfg config.LogConfig, w io.Writer, quiet, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// setMaxProcs matches GOMAXPROCS to the container CPU quota, which sizes
// the converter pool. The returned func restores the previous value.
func setMaxProcs(logger *slog.Logger) func() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply.
	undo, _ := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	return undo
}
