package pipeline

import "strings"

// codeRegions returns the byte ranges [start, end) of code blocks and inline
// code spans in content, in document order. Math scanning skips these ranges
// so dollar signs in code stay literal and placeholders never reach a syntax
// highlighter, which could split them across token spans.
func codeRegions(content string) [][2]int {
	var regions [][2]int
	last := 0
	for _, block := range blockCodeRegions(content) {
		regions = append(regions, inlineCodeRegions(content, last, block[0])...)
		regions = append(regions, block)
		last = block[1]
	}
	return append(regions, inlineCodeRegions(content, last, len(content))...)
}

// blockCodeRegions finds fenced and indented code blocks.
//
// A ``` or ~~~ fence indented by up to three spaces opens a block; a fence of
// the same character, at least as long, with nothing but whitespace after it
// closes it. An unclosed fence runs to the end of the document, as in
// CommonMark.
//
// An indented block starts at a line indented by four spaces or a tab that
// follows a blank line (or the start of the document) and is not part of a
// list item. It ends before the first non-blank line with less indentation;
// trailing blank lines are not part of it.
func blockCodeRegions(content string) [][2]int {
	var regions [][2]int

	var (
		open      bool
		start     int
		fenceChar byte
		fenceLen  int

		indented    bool
		indentedEnd int
		prevBlank   = true
		inList      bool
	)

	closeIndented := func() {
		if indented {
			regions = append(regions, [2]int{start, indentedEnd})
			indented = false
		}
	}

	for offset := 0; offset < len(content); {
		end := strings.IndexByte(content[offset:], '\n')
		next := len(content)
		if end != -1 {
			next = offset + end + 1
		}
		line := strings.TrimRight(content[offset:next], "\n")
		blank := strings.TrimSpace(line) == ""

		if open {
			char, n, rest := parseFence(line)
			if n > 0 && char == fenceChar && n >= fenceLen && strings.TrimSpace(rest) == "" {
				regions = append(regions, [2]int{start, next})
				open = false
			}
			offset, prevBlank = next, false
			continue
		}

		switch {
		case blank:
			// Blank lines neither open nor close an indented block.
		case isIndentedCode(line):
			if indented {
				indentedEnd = next
			} else if prevBlank && !inList {
				indented, start, indentedEnd = true, offset, next
			}
		default:
			closeIndented()
			if char, n, _ := parseFence(line); n > 0 {
				open, start, fenceChar, fenceLen = true, offset, char, n
				break
			}
			if isListItem(line) {
				inList = true
			} else if prevBlank {
				inList = false
			}
		}
		offset, prevBlank = next, blank
	}

	closeIndented()
	if open {
		regions = append(regions, [2]int{start, len(content)})
	}
	return regions
}

// isIndentedCode reports whether line starts with four spaces or a tab.
func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

// isListItem reports whether line opens a bullet or ordered list item.
func isListItem(line string) bool {
	line = strings.TrimLeft(line, " ")
	if len(line) >= 2 && strings.IndexByte("-*+", line[0]) != -1 && (line[1] == ' ' || line[1] == '\t') {
		return true
	}
	digits := 0
	for digits < len(line) && digits < 9 && line[digits] >= '0' && line[digits] <= '9' {
		digits++
	}
	return digits > 0 && len(line) > digits+1 &&
		(line[digits] == '.' || line[digits] == ')') &&
		(line[digits+1] == ' ' || line[digits+1] == '\t')
}

// parseFence reports the fence character and length at the start of line,
// or n == 0 when the line is not a fence.
func parseFence(line string) (char byte, n int, rest string) {
	indent := 0
	for indent < len(line) && indent < 3 && line[indent] == ' ' {
		indent++
	}
	line = line[indent:]
	if line == "" || (line[0] != '`' && line[0] != '~') {
		return 0, 0, ""
	}
	char = line[0]
	n = runLength(line, 0, len(line), char)
	if n < 3 {
		return 0, 0, ""
	}
	return char, n, line[n:]
}

// inlineCodeRegions finds backtick code spans between from and to. A run of n
// backticks is closed by the next run of exactly n backticks; an unmatched run
// is literal text.
func inlineCodeRegions(content string, from, to int) [][2]int {
	var regions [][2]int
	for i := from; i < to; {
		if content[i] != '`' {
			i++
			continue
		}
		n := runLength(content, i, to, '`')
		closeAt := -1
		for j := i + n; j < to; {
			if content[j] != '`' {
				j++
				continue
			}
			m := runLength(content, j, to, '`')
			if m == n {
				closeAt = j
				break
			}
			j += m
		}
		if closeAt == -1 {
			i += n
			continue
		}
		regions = append(regions, [2]int{i, closeAt + n})
		i = closeAt + n
	}
	return regions
}

// runLength counts consecutive c bytes starting at i, stopping at limit.
func runLength(s string, i, limit int, c byte) int {
	n := 0
	for i+n < limit && s[i+n] == c {
		n++
	}
	return n
}

// replaceOutsideCode applies replace to every stretch of content that is not
// inside a code region, keeping code regions untouched.
func replaceOutsideCode(content string, replace func(segment string) string) string {
	regions := codeRegions(content)
	if len(regions) == 0 {
		return replace(content)
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, r := range regions {
		b.WriteString(replace(content[last:r[0]]))
		b.WriteString(content[r[0]:r[1]])
		last = r[1]
	}
	b.WriteString(replace(content[last:]))
	return b.String()
}
