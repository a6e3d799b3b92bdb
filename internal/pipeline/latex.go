package pipeline

import (
	"regexp"
	"strings"
)

// noiseCommands are zero-argument LaTeX layout commands with no HTML meaning.
var noiseCommands = []string{
	"newpage",
	"pagebreak",
	"clearpage",
	"cleardoublepage",
	"noindent",
}

// latexNoisePattern matches a noise command plus any trailing whitespace.
// The command name must not continue with a letter, so \newpages or
// \noindentation are left alone. RE2 has no lookahead, so the next letter
// is captured and checked in StripLatexNoise.
var latexNoisePattern = regexp.MustCompile(`\\(` + strings.Join(noiseCommands, "|") + `)([A-Za-z]?)\s*`)

// StripLatexNoise removes layout-only LaTeX commands and the whitespace after
// them. Code spans and fenced code blocks are left untouched.
// Removal can join two fragments into a new command ("\new\newpage page"), so
// the pass repeats until nothing changes. Stripping twice equals stripping once.
func StripLatexNoise(content string) string {
	for {
		stripped := stripLatexNoiseOnce(content)
		if stripped == content {
			return stripped
		}
		content = stripped
	}
}

func stripLatexNoiseOnce(content string) string {
	return replaceOutsideCode(content, stripLatexSegment)
}

func stripLatexSegment(segment string) string {
	return latexNoisePattern.ReplaceAllStringFunc(segment, func(match string) string {
		sub := latexNoisePattern.FindStringSubmatch(match)
		if sub[2] != "" {
			return match
		}
		return ""
	})
}
