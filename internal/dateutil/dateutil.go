// Package dateutil provides date format parsing utilities.
package dateutil

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an invalid date format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength limits format string length to prevent abuse.
const MaxDateFormatLength = 50

// Default formats for the date keywords.
const (
	DefaultDateFormat     = "YYYY-MM-DD"
	DefaultDateTimeFormat = "YYYY-MM-DD HH:mm"
)

// dateTokens maps user-friendly tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common date formats.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// ParseDateFormat converts a user-friendly format string to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, HH, mm, ss
// Use brackets to escape literal text: [Date] preserves "Date" literally.
// Any non-token characters outside brackets are preserved as literals.
// Returns ErrInvalidDateFormat if the format is empty, too long, or has unclosed brackets.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var result strings.Builder
	result.Grow(len(format) + 10) // Pre-allocate with some buffer

	i := 0
	for i < len(format) {
		// Handle bracket-escaped literal text
		if format[i] == '[' {
			end := strings.Index(format[i+1:], "]")
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			// Copy content inside brackets literally
			result.WriteString(format[i+1 : i+1+end])
			i += end + 2 // Skip past closing bracket
			continue
		}

		matched := false

		// Try to match tokens (longest first due to slice order)
		for _, t := range dateTokens {
			if strings.HasPrefix(format[i:], t.token) {
				result.WriteString(t.goFmt)
				i += len(t.token)
				matched = true
				break
			}
		}

		if !matched {
			// Preserve literal character
			result.WriteByte(format[i])
			i++
		}
	}

	return result.String(), nil
}

// Date keywords accepted in document metadata.
const (
	KeywordToday = "today"
	KeywordNow   = "now"
	KeywordAuto  = "auto"
)

// ResolveDate expands date keywords against t:
//   - "today" and "auto" → t in layout, or DefaultDateFormat when layout is empty
//   - "now" → t in layout, or DefaultDateTimeFormat when layout is empty
//   - "auto:FORMAT" → t in FORMAT, which may be a preset (iso, european, us, long)
//   - any other value → returned unchanged
//
// Keywords are case-insensitive. layout uses the same tokens as ParseDateFormat.
func ResolveDate(value, layout string, t time.Time) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(value))

	switch lower {
	case KeywordToday, KeywordAuto:
		return formatDate(t, cmp.Or(layout, DefaultDateFormat))
	case KeywordNow:
		return formatDate(t, cmp.Or(layout, DefaultDateTimeFormat))
	}

	if !strings.HasPrefix(lower, KeywordAuto) {
		return value, nil
	}
	if !strings.HasPrefix(lower, KeywordAuto+":") {
		return "", fmt.Errorf("%w: invalid auto syntax %q, use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, value)
	}

	// Keep the original case: format tokens are case-sensitive
	formatPart := strings.TrimSpace(value)[len(KeywordAuto)+1:]
	if formatPart == "" {
		return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
	}
	return formatDate(t, formatPart)
}

// formatDate renders t with a user format or preset name.
func formatDate(t time.Time, format string) (string, error) {
	if preset, ok := DatePresets[strings.ToLower(format)]; ok {
		format = preset
	}
	goFmt, err := ParseDateFormat(format)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}
