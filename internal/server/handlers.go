package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	qmd "github.com/alnah/go-qmd"
	"github.com/alnah/go-qmd/internal/fileutil"
)

type handler struct {
	renderer Renderer
	root     string
	maxBody  int64
}

// RenderResponse is the body of a successful POST /api/render.
type RenderResponse struct {
	HTML     string            `json:"html"`
	Metadata map[string]string `json:"metadata"`
	Keys     []string          `json:"keys"` // metadata keys in document order
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// render converts the request body. ?standalone=true returns a full page.
func (h *handler) render(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "source exceeds "+strconv.FormatInt(h.maxBody, 10)+" bytes")
			return
		}
		writeError(w, r, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}

	standalone, _ := strconv.ParseBool(r.URL.Query().Get("standalone"))
	result, err := h.renderer.Convert(r.Context(), qmd.Input{
		Source:     string(body),
		Standalone: standalone,
	})
	if err != nil {
		logger.Error("render failed", "error", err)
		writeError(w, r, http.StatusInternalServerError, "render failed")
		return
	}

	resp := RenderResponse{
		HTML:     result.Fragment,
		Metadata: make(map[string]string, result.Metadata.Len()),
		Keys:     result.Metadata.Keys(),
	}
	if standalone {
		resp.HTML = string(result.HTML)
	}
	for _, k := range resp.Keys {
		resp.Metadata[k] = result.Metadata.Value(k)
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// preview renders a .qmd file under root as a standalone page. Other files
// are served unchanged so relative images and links keep working.
func (h *handler) preview(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	full, ok := h.resolve(rel)
	if !ok {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	if !fileutil.HasExt(full, qmd.SourceExt) {
		http.ServeFile(w, r, full)
		return
	}

	src, err := os.ReadFile(full) // #nosec G304 -- contained in root by resolve
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "reading source")
		return
	}

	result, err := h.renderer.Convert(r.Context(), qmd.Input{Source: string(src), Standalone: true})
	if err != nil {
		LoggerFromContext(r.Context()).Error("preview failed", "file", rel, "error", err)
		writeError(w, r, http.StatusInternalServerError, "render failed")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.HTML)
}

// resolve maps a URL path to a file under root, rejecting escapes.
func (h *handler) resolve(rel string) (string, bool) {
	if h.root == "" || rel == "" {
		return "", false
	}
	cleaned := path.Clean("/" + rel)
	full := filepath.Join(h.root, filepath.FromSlash(cleaned))

	back, err := filepath.Rel(h.root, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		LoggerFromContext(r.Context()).Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorResponse{Error: msg, RequestID: RequestIDFromContext(r.Context())})
}
