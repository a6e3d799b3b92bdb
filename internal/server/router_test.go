package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/server"
	"github.com/alnah/go-qmd/internal/server/mocks"
)

func newConverter(t *testing.T) *qmd.Converter {
	t.Helper()
	conv, err := qmd.NewConverter()
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	t.Cleanup(func() { _ = conv.Close() })
	return conv
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestRouter_Routes - Route Table
// ---------------------------------------------------------------------------

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "doc.qmd", "# Title\n\n$x$\n")
	router := server.NewRouter(&server.Deps{Renderer: newConverter(t), Root: root})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "render requires POST", method: http.MethodGet, path: "/api/render", wantStatus: http.StatusMethodNotAllowed},
		{name: "preview existing document", method: http.MethodGet, path: "/preview/doc.qmd", wantStatus: http.StatusOK},
		{name: "preview missing document", method: http.MethodGet, path: "/preview/missing.qmd", wantStatus: http.StatusNotFound},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRender - POST /api/render
// ---------------------------------------------------------------------------

func TestRender_Fragment(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(&server.Deps{Renderer: newConverter(t)})
	body := "---\ntitle: Notes\nauthor: Ada\n---\n$$a_b$$ and $c*d$\n"

	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp server.RenderResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(resp.HTML, `id="qmd-rendered-content"`) {
		t.Errorf("html should be the fragment, got %q", resp.HTML)
	}
	if !strings.Contains(resp.HTML, "a_b") || strings.Contains(resp.HTML, "<em>") {
		t.Errorf("math should survive markdown untouched, got %q", resp.HTML)
	}
	if resp.Metadata["title"] != "Notes" || resp.Metadata["author"] != "Ada" {
		t.Errorf("metadata = %v", resp.Metadata)
	}
	if strings.Join(resp.Keys, ",") != "title,author" {
		t.Errorf("keys = %v, want document order", resp.Keys)
	}
}

func TestRender_EmptyBody(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(&server.Deps{Renderer: newConverter(t)})
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(""))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	var resp server.RenderResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.Contains(resp.HTML, `<div class="qmd-content"></div>`) {
		t.Errorf("html = %q, want an empty content div", resp.HTML)
	}
	if len(resp.Keys) != 0 {
		t.Errorf("keys = %v, want none", resp.Keys)
	}
}

func TestRender_Standalone(t *testing.T) {
	t.Parallel()

	router := server.NewRouter(&server.Deps{Renderer: newConverter(t)})
	req := httptest.NewRequest(http.MethodPost, "/api/render?standalone=true", strings.NewReader("# Hi\n"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp server.RenderResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(resp.HTML), "<!DOCTYPE html>") {
		t.Errorf("standalone html should be a full page, got %.60q", resp.HTML)
	}
}

func TestRender_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		maxBody    int64
		convertErr error
		wantStatus int
	}{
		{name: "renderer failure", body: "# x", convertErr: errors.New("boom"), wantStatus: http.StatusInternalServerError},
		{name: "body too large", body: strings.Repeat("a", 64), maxBody: 16, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			renderer := mocks.NewMockRenderer(ctrl)
			if tt.convertErr != nil {
				renderer.EXPECT().
					Convert(gomock.Any(), gomock.Any()).
					Return(nil, tt.convertErr)
			}

			router := server.NewRouter(&server.Deps{Renderer: renderer, MaxBody: tt.maxBody})
			req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(tt.body))
			req.Header.Set(server.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp server.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message should be set")
			}
			if resp.RequestID != "req-42" {
				t.Errorf("request_id = %q, want req-42", resp.RequestID)
			}
		})
	}
}

func TestRender_PassesSourceThrough(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().
		Convert(gomock.Any(), qmd.Input{Source: "$x$"}).
		Return(&qmd.Result{Fragment: "<div>ok</div>"}, nil)

	router := server.NewRouter(&server.Deps{Renderer: renderer})
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader("$x$"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<div>ok</div>") && !strings.Contains(w.Body.String(), `\u003cdiv\u003eok`) {
		t.Errorf("body = %s, want the renderer's fragment", w.Body)
	}
}

func TestRender_RecoversPanic(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().
		Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, qmd.Input) (*qmd.Result, error) {
			panic("renderer exploded")
		})

	router := server.NewRouter(&server.Deps{Renderer: renderer})
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader("x"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

// ---------------------------------------------------------------------------
// TestPreview - GET /preview/*
// ---------------------------------------------------------------------------

func TestPreview(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "notes/week1.qmd", "---\ntitle: Week 1\n---\n:::{.callout-note}\nRead this.\n:::\n")
	writeFile(t, root, "notes/figure.svg", "<svg></svg>")
	writeFile(t, root, "notes/empty.qmd", "")
	outside := t.TempDir()
	writeFile(t, outside, "secret.qmd", "secret")

	router := server.NewRouter(&server.Deps{Renderer: newConverter(t), Root: root})

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantContains string
	}{
		{name: "renders qmd as page", path: "/preview/notes/week1.qmd", wantStatus: http.StatusOK, wantContains: "<title>Week 1</title>"},
		{name: "callouts translated", path: "/preview/notes/week1.qmd", wantStatus: http.StatusOK, wantContains: "qmd-callout-note"},
		{name: "serves other files as-is", path: "/preview/notes/figure.svg", wantStatus: http.StatusOK, wantContains: "<svg></svg>"},
		{name: "empty document", path: "/preview/notes/empty.qmd", wantStatus: http.StatusOK, wantContains: `<div class="qmd-content"></div>`},
		{name: "directory is not found", path: "/preview/notes", wantStatus: http.StatusNotFound},
		{name: "traversal stays in root", path: "/preview/../" + filepath.Base(outside) + "/secret.qmd", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantStatus)
			}
			if tt.wantContains != "" && !strings.Contains(w.Body.String(), tt.wantContains) {
				t.Errorf("GET %s body missing %q", tt.path, tt.wantContains)
			}
		})
	}
}
