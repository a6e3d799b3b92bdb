package pipeline

import "strings"

// frontMatterDelimiter is the line that opens and closes a front matter block.
const frontMatterDelimiter = "---"

// Metadata is an insertion-ordered string mapping parsed from front matter.
// The zero value is empty and ready to use.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata creates an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Set stores value under key. A key that already exists keeps its original
// position and takes the new value.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Metadata) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Value returns the value for key, or "" when absent.
func (m *Metadata) Value(key string) string {
	v, _ := m.Get(key)
	return v
}

// Keys returns the keys in first-appearance order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// FrontMatter is the result of splitting a document into metadata and body.
type FrontMatter struct {
	Metadata *Metadata
	Body     string
}

// ExtractFrontMatter splits a leading front matter block from content.
//
// The block must start at offset 0 with a line that is exactly "---", and end
// with another "---" line followed by a newline. Inside, each line is split at
// its first colon; lines without a colon, or starting with one, are skipped.
// Values lose surrounding whitespace and one matching pair of quotes. Later
// duplicates overwrite earlier values.
//
// When no complete block is found the metadata is empty and Body is content,
// byte for byte.
func ExtractFrontMatter(content string) FrontMatter {
	block, body, ok := splitFrontMatter(content)
	if !ok {
		return FrontMatter{Metadata: NewMetadata(), Body: content}
	}
	return FrontMatter{Metadata: parseFlatYAML(block), Body: body}
}

// splitFrontMatter returns the lines between the delimiters and the remaining
// body. The closing delimiter must be followed by a newline.
func splitFrontMatter(content string) (block []string, body string, ok bool) {
	opening := frontMatterDelimiter + "\n"
	if !strings.HasPrefix(content, opening) {
		return nil, "", false
	}

	rest := content[len(opening):]
	offset := 0
	for {
		end := strings.IndexByte(rest[offset:], '\n')
		if end == -1 {
			// Last line has no newline: even a "---" here does not close the block.
			return nil, "", false
		}
		line := rest[offset : offset+end]
		if line == frontMatterDelimiter {
			return block, rest[offset+end+1:], true
		}
		block = append(block, line)
		offset += end + 1
	}
}

// parseFlatYAML parses "key: value" lines. It is not a YAML parser: nesting,
// lists and multi-line scalars are not understood.
func parseFlatYAML(lines []string) *Metadata {
	meta := NewMetadata()
	for _, line := range lines {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		value := unquote(strings.TrimSpace(line[colon+1:]))
		meta.Set(key, value)
	}
	return meta
}

// unquote removes one matching pair of single or double quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '"' || first == '\'') && first == last {
		return s[1 : len(s)-1]
	}
	return s
}
