package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// Sentinel errors for template rendering.
var (
	ErrFragmentRender = errors.New("fragment template rendering failed")
	ErrDocumentRender = errors.New("document template rendering failed")
)

// Metadata keys consumed by the assembler.
const (
	MetaTitle  = "title"
	MetaAuthor = "author"
	MetaDate   = "date"
	MetaLang   = "lang"
)

// FragmentData is the data passed to the fragment template.
// String fields are escaped by html/template; Body is inserted as is.
type FragmentData struct {
	HasMetadata bool
	Title       string
	Author      string
	Date        string
	Body        template.HTML
}

// DocumentData is the data passed to the standalone document template.
type DocumentData struct {
	Lang             string
	Title            string
	Stylesheets      []string
	KaTeXScript      string // Client-side KaTeX, empty when math is pre-rendered
	AutoRenderScript string
	Fragment         template.HTML
}

// DocumentAssembler defines the contract for building the final output.
type DocumentAssembler interface {
	Assemble(meta *Metadata, body string) (string, error)
	AssembleDocument(data DocumentData) (string, error)
}

// Assembly renders the metadata header and body with html/template.
type Assembly struct {
	fragment *template.Template
	document *template.Template
}

// Compile-time interface check.
var _ DocumentAssembler = (*Assembly)(nil)

// NewAssembly parses the fragment and document templates.
// Returns error if either template cannot be parsed.
func NewAssembly(fragmentTmpl, documentTmpl string) (*Assembly, error) {
	fragment, err := template.New("fragment").Parse(fragmentTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment template: %w", err)
	}
	document, err := template.New("document").Parse(documentTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &Assembly{fragment: fragment, document: document}, nil
}

// Assemble builds the rendered fragment: a metadata header when meta has any
// key, followed by the body. Title, author and date are HTML-escaped; the
// body is already HTML and is not escaped again.
func (a *Assembly) Assemble(meta *Metadata, body string) (string, error) {
	data := FragmentData{
		HasMetadata: meta.Len() > 0,
		Title:       meta.Value(MetaTitle),
		Author:      meta.Value(MetaAuthor),
		Date:        meta.Value(MetaDate),
		Body:        template.HTML(body), // #nosec G203 -- rendered Markdown
	}

	var buf bytes.Buffer
	if err := a.fragment.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFragmentRender, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// AssembleDocument wraps a fragment in a standalone HTML page.
func (a *Assembly) AssembleDocument(data DocumentData) (string, error) {
	if data.Lang == "" {
		data.Lang = "en"
	}
	if data.Title == "" {
		data.Title = "Document"
	}

	var buf bytes.Buffer
	if err := a.document.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	return buf.String(), nil
}
