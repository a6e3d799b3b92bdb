package qmd

//go:generate go run go.uber.org/mock/mockgen@latest -destination=internal/pipeline/mocks/mock_pipeline.go -package=mocks github.com/alnah/go-qmd/internal/pipeline MarkdownRenderer,MathRenderer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/alnah/go-qmd/internal/assets"
	"github.com/alnah/go-qmd/internal/dateutil"
	"github.com/alnah/go-qmd/internal/pipeline"
)

// MetaDateFormat is the metadata key giving the layout of date keywords.
const MetaDateFormat = "date-format"

// Converter orchestrates the QMD-to-HTML pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
type Converter struct {
	cfg         converterConfig
	logger      *slog.Logger
	assetLoader assets.AssetLoader
	markdown    MarkdownRenderer
	markdownSet bool
	math        MathRenderer
	mathSet     bool
	callouts    pipeline.CalloutTranslator
	assembler   pipeline.DocumentAssembler
	pdf         pdfConverter
	style       string // Built-in stylesheet plus chroma classes
}

// NewConverter creates a Converter with default configuration.
// Returns error if asset loading or template parsing fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:        defaultTimeout,
			highlightStyle: DefaultHighlightStyle,
			hardWraps:      true,
			katex:          DefaultKaTeXURLs(),
			now:            time.Now,
		},
		logger:      slog.New(slog.DiscardHandler),
		assetLoader: assets.NewEmbeddedLoader(),
		math:        pipeline.NewMarkupMathRenderer(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
		if resolver.HasCustomLoader() {
			c.logger.Debug("loading custom assets", "path", c.cfg.assetPath)
		}
	}

	if !c.markdownSet {
		c.markdown = c.newMarkdownRenderer()
	}
	if c.cfg.typesetMath && !c.mathSet {
		c.math = NewKaTeXRenderer(c.cfg.katex.Script, c.cfg.timeout)
	}

	icons, err := assets.LoadIcons(c.assetLoader, pipeline.CalloutKinds)
	if err != nil {
		return nil, fmt.Errorf("loading callout icons: %w", err)
	}
	c.callouts = pipeline.NewCalloutTranslation(icons)

	templateSet, err := c.assetLoader.LoadTemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		return nil, fmt.Errorf("loading default template set: %w", err)
	}
	c.assembler, err = pipeline.NewAssembly(templateSet.Fragment, templateSet.Document)
	if err != nil {
		return nil, fmt.Errorf("initializing assembler: %w", err)
	}

	if err := c.loadStyle(); err != nil {
		return nil, err
	}

	if c.pdf == nil {
		c.pdf = newRodConverter(c.cfg.timeout)
	}

	return c, nil
}

// newMarkdownRenderer builds the Goldmark renderer from the options.
func (c *Converter) newMarkdownRenderer() *pipeline.GoldmarkConverter {
	opts := []pipeline.GoldmarkOption{pipeline.WithHardWraps(c.cfg.hardWraps)}
	if c.cfg.highlighter != nil {
		opts = append(opts, pipeline.WithHighlighter(c.cfg.highlighter))
	}
	return pipeline.NewGoldmarkConverter(opts...)
}

// loadStyle combines the built-in stylesheet with the chroma classes of the
// configured highlight style.
func (c *Converter) loadStyle() error {
	css, err := c.assetLoader.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		return fmt.Errorf("loading style: %w", err)
	}
	chroma, err := pipeline.ChromaCSS(c.cfg.highlightStyle)
	if err != nil {
		return fmt.Errorf("loading highlight style %q: %w", c.cfg.highlightStyle, err)
	}
	c.style = css + "\n" + chroma
	return nil
}

// Convert runs the full pipeline on input.Source.
// The context is checked between stages and cancels browser work.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	fragment, meta, err := c.renderFragment(ctx, input)
	if err != nil {
		return nil, err
	}

	res := &Result{Fragment: fragment, Metadata: meta}
	if !input.Standalone && !input.PDF {
		return res, nil
	}

	page, err := c.renderDocument(meta, fragment, input.CSS)
	if err != nil {
		return nil, err
	}
	res.HTML = []byte(page)

	if !input.PDF {
		return res, nil
	}

	pdfBytes, err := c.pdf.ToPDF(ctx, page, input.Page)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	res.PDF = pdfBytes
	return res, nil
}

// renderFragment runs the stages that produce the fragment. Everything that
// must not be seen by Goldmark is protected before it runs and restored after.
func (c *Converter) renderFragment(ctx context.Context, input Input) (string, *Metadata, error) {
	text := pipeline.NormalizeLineEndings(input.Source)

	fm := pipeline.ExtractFrontMatter(text)
	meta := fm.Metadata
	c.resolveDate(meta)

	body := pipeline.StripLatexNoise(fm.Body)
	body, blocks := pipeline.ProtectMath(body)
	body = pipeline.ConvertHighlights(body)
	body = c.callouts.TranslateCallouts(body)
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	htmlBody, err := c.markdown.RenderMarkdown(ctx, body)
	if err != nil {
		return "", nil, fmt.Errorf("rendering markdown: %w", err)
	}
	htmlBody = pipeline.ConvertMarkPlaceholders(htmlBody)

	htmlBody, err = pipeline.RestoreMath(htmlBody, blocks)
	if err != nil {
		if c.cfg.strictPlaceholders {
			return "", nil, err
		}
		c.logger.Error("math placeholder left unrestored", "error", err, "blocks", blocks.Len())
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	rendered, err := c.math.RenderMath(ctx, htmlBody)
	switch {
	case err == nil:
		htmlBody = rendered
	case ctx.Err() != nil:
		return "", nil, ctx.Err()
	default:
		c.logger.Warn("math rendering failed, leaving delimiters as text", "error", err)
	}

	htmlBody, err = pipeline.RewriteRelativePaths(htmlBody, pathRewrite(input))
	if err != nil {
		return "", nil, fmt.Errorf("rewriting relative paths: %w", err)
	}

	htmlBody, err = pipeline.InjectTOC(htmlBody, pipeline.TOCOptionsFromMetadata(meta))
	if err != nil {
		return "", nil, fmt.Errorf("injecting table of contents: %w", err)
	}

	fragment, err := c.assembler.Assemble(meta, htmlBody)
	if err != nil {
		return "", nil, fmt.Errorf("assembling fragment: %w", err)
	}
	return fragment, meta, nil
}

// renderDocument wraps fragment in a standalone page with the stylesheets.
func (c *Converter) renderDocument(meta *Metadata, fragment, extraCSS string) (string, error) {
	data := pipeline.DocumentData{
		Lang:        meta.Value(pipeline.MetaLang),
		Title:       meta.Value(pipeline.MetaTitle),
		Stylesheets: []string{c.cfg.katex.Stylesheet},
		Fragment:    template.HTML(fragment), // #nosec G203 -- assembled fragment
	}
	// Markup math is typeset by the reader's browser
	if _, ok := c.math.(*pipeline.MarkupMathRenderer); ok {
		data.KaTeXScript = c.cfg.katex.Script
		data.AutoRenderScript = c.cfg.katex.AutoRender
	}

	page, err := c.assembler.AssembleDocument(data)
	if err != nil {
		return "", fmt.Errorf("assembling document: %w", err)
	}
	return pipeline.InjectCSS(page, c.style, extraCSS), nil
}

// resolveDate replaces a date keyword (today, now, auto, auto:FORMAT) with
// the formatted date. An invalid keyword is logged and left as written.
func (c *Converter) resolveDate(meta *Metadata) {
	value, ok := meta.Get(pipeline.MetaDate)
	if !ok {
		return
	}
	resolved, err := dateutil.ResolveDate(value, meta.Value(MetaDateFormat), c.cfg.now())
	if err != nil {
		c.logger.Warn("date left unresolved", "date", value, "error", err)
		return
	}
	if resolved != value {
		meta.Set(pipeline.MetaDate, resolved)
	}
}

// pathRewrite derives relative path handling from the input.
func pathRewrite(input Input) pipeline.PathRewrite {
	var p pipeline.PathRewrite
	if input.SourcePath != "" {
		p.SourceDir = filepath.Dir(input.SourcePath)
	}
	p.LinkExt = input.LinkExt
	return p
}

// Close releases the browsers owned by the converter.
func (c *Converter) Close() error {
	var errs []error
	if c.pdf != nil {
		errs = append(errs, c.pdf.Close())
	}
	if closer, ok := c.math.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return errors.Join(errs...)
}

// validateInput checks that required fields and collaborators are present.
func (c *Converter) validateInput(input Input) error {
	if c.markdown == nil {
		return ErrNoMarkdownRenderer
	}
	if c.math == nil {
		return ErrNoMathRenderer
	}
	if input.PDF {
		return input.Page.Validate()
	}
	return nil
}

// Timeout returns the browser timeout, for callers sizing their own deadlines.
func (c *Converter) Timeout() time.Duration {
	return cmp.Or(c.cfg.timeout, defaultTimeout)
}
