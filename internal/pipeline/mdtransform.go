package pipeline

import (
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged and are turned into <mark> tags
// once the HTML fragment exists.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end

	// Percent-encoded forms, written by Goldmark inside link destinations
	markStartURL = "%EE%80%80"
	markEndURL   = "%EE%80%81"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Highlight syntax ==text== on a single line
	highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)
)

// NormalizeLineEndings converts \r\n and \r to \n.
// Every other stage assumes \n line endings.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// ConvertHighlights transforms ==text== outside code into placeholder markers.
// It runs after ProtectMath so that == inside math is never touched.
func ConvertHighlights(content string) string {
	return replaceOutsideCode(content, func(segment string) string {
		return highlightPattern.ReplaceAllString(segment, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
	})
}

// markReplacer turns markers into <mark> tags, and encoded markers in a URL
// back into the == they replaced.
var markReplacer = strings.NewReplacer(
	MarkStartPlaceholder, "<mark>",
	MarkEndPlaceholder, "</mark>",
	markStartURL, "==",
	markEndURL, "==",
)

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
// Called after Goldmark HTML conversion to finalize highlight markup.
func ConvertMarkPlaceholders(content string) string {
	return markReplacer.Replace(content)
}
