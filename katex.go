package qmd

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/alnah/go-qmd/internal/fileutil"
	"github.com/alnah/go-qmd/internal/pipeline"
)

// KaTeX release served by default.
const katexRelease = "https://cdn.jsdelivr.net/npm/katex@0.16.11/dist/"

// KaTeXURLs locates the KaTeX files. Any field may point at a local copy.
type KaTeXURLs struct {
	Stylesheet string
	Script     string
	AutoRender string
}

// DefaultKaTeXURLs returns the CDN locations of KaTeX 0.16.11.
func DefaultKaTeXURLs() KaTeXURLs {
	return KaTeXURLsFrom(katexRelease)
}

// KaTeXURLsFrom locates the files of a KaTeX dist directory at base, which
// may be a URL or a local path.
func KaTeXURLsFrom(base string) KaTeXURLs {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return KaTeXURLs{
		Stylesheet: base + "katex.min.css",
		Script:     base + "katex.min.js",
		AutoRender: base + "contrib/auto-render.min.js",
	}
}

// mathRootID is the element the typesetting script works in.
const mathRootID = "qmd-math-root"

// typesetScript renders every math span in place and returns the result.
// A span KaTeX cannot parse is rendered as an error marker by KaTeX itself.
const typesetScript = `() => {
	if (typeof katex === 'undefined') {
		throw new Error('KaTeX script not loaded');
	}
	const root = document.getElementById('` + mathRootID + `');
	for (const el of root.querySelectorAll('span.math')) {
		const display = el.classList.contains('display');
		const tex = el.textContent.slice(2, -2);
		try {
			katex.render(tex, el, {displayMode: display, throwOnError: false, strict: 'ignore', trust: true});
		} catch (e) {
			el.classList.add('` + pipeline.MathErrorClass + `');
			el.title = String(e);
		}
	}
	return root.innerHTML;
}`

// KaTeXRenderer typesets math server-side: the delimiters are first turned
// into math spans, then KaTeX runs on them in headless Chrome. The output
// needs only the KaTeX stylesheet, no script.
//
// A KaTeXRenderer owns a browser. It must be closed, and it is not meant to
// be shared by concurrent conversions; use one per ConverterPool worker.
type KaTeXRenderer struct {
	markup  *pipeline.MarkupMathRenderer
	browser *browser
	script  string
}

// Compile-time interface check.
var _ MathRenderer = (*KaTeXRenderer)(nil)

// NewKaTeXRenderer creates a KaTeXRenderer loading KaTeX from scriptURL.
// An empty scriptURL uses the default CDN location. The browser starts on
// first use.
func NewKaTeXRenderer(scriptURL string, timeout time.Duration) *KaTeXRenderer {
	if scriptURL == "" {
		scriptURL = DefaultKaTeXURLs().Script
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &KaTeXRenderer{
		markup:  pipeline.NewMarkupMathRenderer(),
		browser: newBrowser(timeout),
		script:  scriptURL,
	}
}

// RenderMath implements MathRenderer.
func (r *KaTeXRenderer) RenderMath(ctx context.Context, fragment string) (string, error) {
	marked, err := r.markup.RenderMath(ctx, fragment)
	if err != nil {
		return "", err
	}

	// Nothing to typeset, skip the browser round trip
	if !strings.Contains(marked, `class="math `) {
		return marked, nil
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(r.page(marked), "html")
	if err != nil {
		return "", err
	}
	defer cleanup()

	page, err := r.browser.openFile(ctx, tmpPath)
	if err != nil {
		return "", err
	}
	defer page.Close()

	res, err := page.Eval(typesetScript)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMathRender, err)
	}
	return res.Value.Str(), nil
}

// page wraps the marked-up fragment in a page that loads KaTeX.
func (r *KaTeXRenderer) page(fragment string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><script src="`)
	b.WriteString(html.EscapeString(r.script))
	b.WriteString(`"></script></head><body><div id="` + mathRootID + `">`)
	b.WriteString(fragment)
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// Close releases the browser.
func (r *KaTeXRenderer) Close() error {
	return r.browser.Close()
}
