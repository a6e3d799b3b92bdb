package pipeline

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SourceExt is the extension of QMD documents.
const SourceExt = ".qmd"

// PathRewrite describes how relative references in a rendered fragment are
// resolved.
type PathRewrite struct {
	// SourceDir is the directory of the source document. When set, relative
	// img[src] and a[href] values are rewritten to absolute file:// URLs.
	SourceDir string

	// LinkExt, when set, replaces the .qmd extension of relative links to
	// other documents (for example ".html"). Those links stay relative.
	LinkExt string
}

// enabled reports whether the rewrite would change anything.
func (p PathRewrite) enabled() bool {
	return p.SourceDir != "" || p.LinkExt != ""
}

// RewriteRelativePaths applies p to htmlContent.
// If p is the zero value, returns the HTML unchanged.
//
// Does NOT rewrite:
//   - video, audio, source elements
//   - srcset attributes
//   - CSS url() references
//   - script[src]
//   - absolute paths or URLs
//   - targets that resolve outside SourceDir
func RewriteRelativePaths(htmlContent string, p PathRewrite) (string, error) {
	if !p.enabled() {
		return htmlContent, nil
	}

	if p.SourceDir != "" {
		absSourceDir, err := filepath.Abs(p.SourceDir)
		if err != nil {
			return "", err
		}
		p.SourceDir = absSourceDir
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, p)

	return renderHTML(doc, isFragment)
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// rewriteNode traverses the DOM and rewrites relative paths.
func rewriteNode(n *html.Node, p PathRewrite) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img":
			rewriteAttr(n, "src", p, false)
		case "a":
			rewriteAttr(n, "href", p, true)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, p)
	}
}

// rewriteAttr rewrites a single attribute if it's a relative path.
func rewriteAttr(n *html.Node, attrName string, p PathRewrite, isLink bool) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		if isLink && p.LinkExt != "" {
			if rewritten, ok := replaceDocumentExt(attr.Val, p.LinkExt); ok {
				n.Attr[i].Val = rewritten
				continue
			}
		}

		if p.SourceDir == "" {
			continue
		}

		target, _, _ := strings.Cut(attr.Val, "#")
		absPath := filepath.Join(p.SourceDir, filepath.FromSlash(target))

		// Leave the original path when it escapes the source directory
		if !isPathUnderDir(absPath, p.SourceDir) {
			continue
		}

		n.Attr[i].Val = pathToFileURL(absPath)
	}
}

// replaceDocumentExt swaps a trailing .qmd for ext, keeping any fragment.
// Reports false when the link does not point at a QMD document.
func replaceDocumentExt(link, ext string) (string, bool) {
	target, fragment, hasFragment := strings.Cut(link, "#")
	if !strings.EqualFold(path.Ext(target), SourceExt) {
		return "", false
	}
	rewritten := strings.TrimSuffix(target, path.Ext(target)) + ext
	if hasFragment {
		rewritten += "#" + fragment
	}
	return rewritten, true
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return false
	}

	// Any scheme (http:, mailto:, data:, file:) marks an absolute reference
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return false
	}

	return !filepath.IsAbs(p) && !strings.HasPrefix(p, "/")
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
// Handles both Unix and Windows paths correctly.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
