package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrPlaceholderIndex indicates a math placeholder that refers to no recorded block.
// It means the protect and restore stages were given mismatched state.
var ErrPlaceholderIndex = errors.New("math placeholder index out of range")

// Math placeholders use Unicode Private Use Area characters, like the
// ==highlight== marks. They contain no whitespace or Markdown punctuation,
// so Goldmark passes them through as plain text and cannot split them.
const (
	MathStartPlaceholder = "\uE002" // U+E002: opens a math placeholder
	MathEndPlaceholder   = "\uE003" // U+E003: closes a math placeholder
	EscapedDollar        = "\uE004" // U+E004: stands in for \$ until restoration

	mathPlaceholderTag = "MATH"

	// Goldmark percent-encodes placeholders inside link destinations.
	escapedDollarURL = "%EE%80%84"

	// An escaped dollar in text is restored as an entity so the math
	// renderer never reads it as a delimiter.
	escapedDollarEntity = "&#36;"
)

// mathEnvironments are the LaTeX environments rendered as display math.
var mathEnvironments = []string{
	"equation",
	"align",
	"gather",
	"flalign",
	"multline",
	"alignat",
	"split",
}

// Precompiled regex patterns for performance.
var (
	// $$...$$ across lines, shortest match
	displayMathPattern = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)

	// $...$ on one line with no $ inside
	inlineMathPattern = regexp.MustCompile(`\$([^$\n]+?)\$`)

	// \begin{env} or \begin{env*}; the matching \end is found by scanning
	mathEnvOpenPattern = regexp.MustCompile(`\\begin\{((?:` + strings.Join(mathEnvironments, "|") + `)\*?)\}`)

	// placeholder tokens, raw or percent-encoded by a URL context
	placeholderPattern = regexp.MustCompile(
		"(?:\uE002|%EE%80%82)" + mathPlaceholderTag + `([0-9]+)(?:` + "\uE003" + `|%EE%80%83)`)
)

var escapedDollarReplacer = strings.NewReplacer(
	EscapedDollar, escapedDollarEntity,
	escapedDollarURL, "$",
)

// MathBlocks records the original text of each protected math region.
// Index i holds the text behind placeholder i. It is append-only and belongs
// to a single render call.
type MathBlocks struct {
	blocks []string
}

// Len returns the number of protected regions.
func (m *MathBlocks) Len() int {
	if m == nil {
		return 0
	}
	return len(m.blocks)
}

// At returns the stored text for index i.
func (m *MathBlocks) At(i int) string {
	return m.blocks[i]
}

// add stores text and returns its placeholder token.
func (m *MathBlocks) add(text string) string {
	m.blocks = append(m.blocks, text)
	return mathPlaceholder(len(m.blocks) - 1)
}

// mathPlaceholder builds the token for index i.
func mathPlaceholder(i int) string {
	return MathStartPlaceholder + mathPlaceholderTag + strconv.Itoa(i) + MathEndPlaceholder
}

// ProtectMath replaces math regions with placeholder tokens so that Markdown
// conversion cannot alter them. Regions are found in three passes, each over
// the output of the previous one:
//
//  1. display math $$...$$ (may span lines)
//  2. inline math $...$ (single line, no $ inside)
//  3. math environments \begin{name}...\end{name}, stored wrapped in $$...$$
//
// Placeholders are numbered in detection order. An unterminated delimiter is
// left as text. An escaped dollar \$ is never a delimiter, but \\$ is a
// literal backslash followed by one. Code blocks and inline code spans are
// not scanned.
func ProtectMath(content string) (string, *MathBlocks) {
	blocks := &MathBlocks{}

	content = replaceOutsideCode(content, protectEscapedDollars)

	content = replaceOutsideCode(content, func(segment string) string {
		return displayMathPattern.ReplaceAllStringFunc(segment, blocks.add)
	})
	content = replaceOutsideCode(content, func(segment string) string {
		return inlineMathPattern.ReplaceAllStringFunc(segment, blocks.add)
	})
	content = replaceOutsideCode(content, func(segment string) string {
		return protectEnvironments(segment, blocks)
	})

	return content, blocks
}

// protectEscapedDollars replaces each \$ whose backslash is not itself
// escaped, that is one ending an odd run of backslashes.
func protectEscapedDollars(segment string) string {
	if !strings.Contains(segment, `\$`) {
		return segment
	}

	var b strings.Builder
	b.Grow(len(segment))
	for i := 0; i < len(segment); {
		if segment[i] != '\\' {
			b.WriteByte(segment[i])
			i++
			continue
		}
		n := runLength(segment, i, len(segment), '\\')
		if n%2 == 1 && i+n < len(segment) && segment[i+n] == '$' {
			b.WriteString(segment[i : i+n-1])
			b.WriteString(EscapedDollar)
			i += n + 1
			continue
		}
		b.WriteString(segment[i : i+n])
		i += n
	}
	return b.String()
}

// protectEnvironments replaces each math environment in segment with a
// placeholder. The closing tag must name the same environment as the opening
// one; RE2 has no back-references, so the close is searched for directly.
func protectEnvironments(segment string, blocks *MathBlocks) string {
	var b strings.Builder
	for {
		loc := mathEnvOpenPattern.FindStringSubmatchIndex(segment)
		if loc == nil {
			break
		}
		closing := `\end{` + segment[loc[2]:loc[3]] + `}`
		end := strings.Index(segment[loc[1]:], closing)
		if end == -1 {
			b.WriteString(segment[:loc[1]])
			segment = segment[loc[1]:]
			continue
		}
		stop := loc[1] + end + len(closing)
		b.WriteString(segment[:loc[0]])
		b.WriteString(blocks.add("$$" + segment[loc[0]:stop] + "$$"))
		segment = segment[stop:]
	}
	b.WriteString(segment)
	return b.String()
}

// RestoreMath replaces placeholder tokens in content with the original math
// text, unescaped. Tokens stored inside another block (inline math inside an
// environment) are expanded in place, so each token is restored exactly once.
// Escaped dollars come back as \$ inside math, as &#36; in text and as a bare
// $ in a percent-encoded link destination.
//
// A token whose index has no block is left in place and reported with
// ErrPlaceholderIndex; the rest of the content is still restored.
func RestoreMath(content string, blocks *MathBlocks) (string, error) {
	var missing []string

	var expand func(s string) string
	expand = func(s string) string {
		return placeholderPattern.ReplaceAllStringFunc(s, func(token string) string {
			sub := placeholderPattern.FindStringSubmatch(token)
			i, err := strconv.Atoi(sub[1])
			if err != nil || i >= blocks.Len() {
				missing = append(missing, sub[1])
				return token
			}
			// Blocks only contain tokens issued before them, so this terminates.
			return expand(strings.ReplaceAll(blocks.At(i), EscapedDollar, `\$`))
		})
	}

	restored := expand(escapedDollarReplacer.Replace(content))
	if len(missing) > 0 {
		return restored, fmt.Errorf("%w: %s", ErrPlaceholderIndex, strings.Join(missing, ", "))
	}
	return restored, nil
}
