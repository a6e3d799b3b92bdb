package qmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-qmd/internal/fileutil"
)

// pdfConverter abstracts HTML to PDF conversion to allow different backends.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error)
	Close() error
}

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ pdfConverter = (*rodConverter)(nil)
	_ pdfRenderer  = (*rodRenderer)(nil)
)

// pageSize holds portrait dimensions in inches.
type pageSize struct {
	width  float64
	height float64
}

// pageDimensions maps page size names to portrait dimensions.
var pageDimensions = map[string]pageSize{
	PageSizeLetter: {width: 8.5, height: 11},
	PageSizeA4:     {width: 8.27, height: 11.69},
	PageSizeLegal:  {width: 8.5, height: 14},
}

// resolvePageDimensions returns width, height and margin for page.
// A nil page means letter portrait with the default margin.
func resolvePageDimensions(page *PageSettings) (width, height, margin float64) {
	if page == nil {
		page = DefaultPageSettings()
	}

	dims, ok := pageDimensions[strings.ToLower(page.Size)]
	if !ok {
		dims = pageDimensions[PageSizeLetter]
	}
	width, height = dims.width, dims.height
	if strings.EqualFold(page.Orientation, OrientationLandscape) {
		width, height = height, width
	}

	margin = page.Margin
	if margin == 0 {
		margin = DefaultMargin
	}
	return width, height, margin
}

// rodRenderer implements pdfRenderer using go-rod.
type rodRenderer struct {
	browser *browser
}

// newRodRenderer creates a rodRenderer printing with b.
func newRodRenderer(b *browser) *rodRenderer {
	return &rodRenderer{browser: b}
}

// Close releases browser resources.
func (r *rodRenderer) Close() error {
	return r.browser.Close()
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, page *PageSettings) ([]byte, error) {
	p, err := r.browser.openFile(ctx, filePath)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	reader, err := p.PDF(buildPDFOptions(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF for page.
func buildPDFOptions(page *PageSettings) *proto.PagePrintToPDF {
	width, height, margin := resolvePageDimensions(page)
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(width),
		PaperHeight:     floatPtr(height),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(margin),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodConverter converts HTML to PDF using headless Chrome via go-rod.
type rodConverter struct {
	renderer pdfRenderer
}

// newRodConverter creates a rodConverter with its own browser.
func newRodConverter(timeout time.Duration) *rodConverter {
	return &rodConverter{
		renderer: newRodRenderer(newBrowser(timeout)),
	}
}

// ToPDF writes htmlContent to a temporary file and prints it.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string, page *PageSettings) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, page)
}

// Close releases browser resources.
func (c *rodConverter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
