// Package server exposes the conversion pipeline over HTTP so documents can
// be previewed in a browser while they are written.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	qmd "github.com/alnah/go-qmd"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_renderer.go -package=mocks github.com/alnah/go-qmd/internal/server Renderer

// Renderer converts one document. *qmd.Converter satisfies it.
type Renderer interface {
	Convert(ctx context.Context, input qmd.Input) (*qmd.Result, error)
}

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Renderer Renderer
	Root     string       // directory served under /preview/
	Logger   *slog.Logger // nil discards request logs
	MaxBody  int64        // request body limit for /api/render, 0 = DefaultMaxBody
}

// DefaultMaxBody bounds the source posted to /api/render.
const DefaultMaxBody = 1 << 20

// NewRouter creates the HTTP router.
//
//	GET  /healthz        liveness
//	POST /api/render     raw QMD in, JSON {html, metadata} out
//	GET  /preview/*      .qmd files under Root as standalone pages, other files as-is
func NewRouter(deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxBody := deps.MaxBody
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}

	h := &handler{renderer: deps.Renderer, root: deps.Root, maxBody: maxBody}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/render", h.render)
	})
	r.Get("/preview/*", h.preview)

	return r
}
