package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/server"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// runServe starts the preview server and blocks until the context is
// cancelled or the listener fails.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return flagError(err)
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, envCfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	if err := mergeRenderFlags(&flags.render, cfg); err != nil {
		return err
	}
	if flags.host != "" {
		cfg.Server.Host = flags.host
	}
	if flags.port != 0 {
		cfg.Server.Port = flags.port
	}
	if len(positional) > 0 {
		cfg.Server.Root = positional[0]
	} else if flags.root != "" {
		cfg.Server.Root = flags.root
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := filepath.Abs(cmp.Or(cfg.Server.Root, "."))
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	logger := newLogger(cfg.Log, env.Stderr, flags.common.quiet, flags.common.verbose)
	defer setMaxProcs(logger)()

	pool := qmd.NewConverterPool(qmd.ResolvePoolSize(cmp.Or(flags.workers, envCfg.Workers)), converterOptions(cfg, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing converters", "error", err)
		}
	}()

	handler := server.NewRouter(&server.Deps{
		Renderer: &pooledRenderer{pool: &poolAdapter{pool: pool}},
		Root:     root,
		Logger:   logger,
	})

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr(), err)
	}
	logger.Info("serving", "addr", ln.Addr().String(), "root", root)
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Preview at http://%s/preview/\n", ln.Addr())
	}

	return serveHTTP(ctx, ln, handler, logger)
}

// serveHTTP serves on ln until ctx is cancelled, then shuts down gracefully.
func serveHTTP(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
