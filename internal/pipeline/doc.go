// Package pipeline implements the QMD-to-HTML rendering pipeline.
//
// The stages run in a fixed order over a single document:
//   - Front matter extraction (flat key: value lines between --- delimiters)
//   - LaTeX layout-command stripping (\newpage, \noindent, ...)
//   - Math protection: $$...$$, $...$ and math environments become placeholders
//   - Callout translation (:::{.callout-kind} blocks to HTML)
//   - Markdown to HTML conversion via Goldmark
//   - Math restoration: placeholders become the original TeX again
//   - Math rendering over the HTML tree
//   - Fragment assembly (metadata header + body)
//
// Math protection must finish before Goldmark sees the text and restoration
// must start after it. Goldmark never sees TeX, so it cannot turn a_b or c*d
// into emphasis, and the math renderer receives the exact source.
//
// Every stage is a pure function of its input. Browser-backed collaborators
// (KaTeX typesetting, PDF printing) live in the root qmd package.
package pipeline
