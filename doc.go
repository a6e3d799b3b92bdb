// Package qmd renders QMD documents (Markdown with front matter, LaTeX math,
// LaTeX layout commands and fenced callouts) to HTML.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := qmd.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, qmd.Input{
//	    Source: "---\ntitle: Notes\n---\n# Hello\n\n$e^{i\\pi} + 1 = 0$",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Fragment)
//
// The result holds the HTML fragment and the front matter metadata. Set
// Input.Standalone for a complete HTML page and Input.PDF to print that page
// with headless Chrome.
//
// # Conversion Pipeline
//
// Markdown and TeX disagree about underscores, asterisks and backslashes, so
// the stages run in a fixed order:
//
//  1. Front matter extraction (flat key: value block delimited by ---)
//  2. LaTeX layout noise removal (\newpage, \noindent, ...)
//  3. Math protection: $$...$$, $...$ and \begin{env} blocks become placeholders
//  4. Callout translation (:::{.callout-note} fences become HTML blocks)
//  5. Markdown to HTML via Goldmark (GFM, footnotes, hard wraps, highlighting)
//  6. Math restoration (placeholders replaced by the original TeX)
//  7. Math rendering (markup for client-side KaTeX, or KaTeX in headless Chrome)
//  8. Assembly (metadata header and content wrapper)
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := qmd.NewConverter(
//	    qmd.WithLogger(slog.Default()),
//	    qmd.WithHighlightStyle("monokai"),
//	    qmd.WithAssetPath("/path/to/custom/assets"),
//	)
//
// # Parallel Processing
//
// A Converter without browser-backed components is safe for concurrent use.
// For batch work that prints PDFs or typesets math with KaTeX, use
// ConverterPool so that each worker owns its browser:
//
//	pool := qmd.NewConverterPool(4, qmd.WithTimeout(time.Minute))
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Custom Assets
//
// A custom asset directory overrides any subset of the built-in assets:
//
//	assets/
//	├── styles/
//	│   └── default.css
//	├── templates/
//	│   └── default/
//	│       ├── fragment.html
//	│       └── document.html
//	└── icons/
//	    └── note.svg
package qmd
