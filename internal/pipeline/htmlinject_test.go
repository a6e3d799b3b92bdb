package pipeline

import (
	"strings"
	"testing"
)

func TestSanitizeCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no escape needed", "body { color: red; }", "body { color: red; }"},
		{"escapes style close", "</style>", `<\/style>`},
		{"multiple occurrences", "</a></b>", `<\/a><\/b>`},
		{"case variation", "</STYLE>", `<\/STYLE>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sanitizeCSS(tt.input); got != tt.expected {
				t.Errorf("sanitizeCSS(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInjectCSS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		css      []string
		expected string
	}{
		{
			name:     "no stylesheets returns HTML unchanged",
			html:     "<html><head></head><body>Hello</body></html>",
			expected: "<html><head></head><body>Hello</body></html>",
		},
		{
			name:     "blank stylesheet skipped",
			html:     "<html><head></head><body></body></html>",
			css:      []string{"  \n"},
			expected: "<html><head></head><body></body></html>",
		},
		{
			name:     "inserts before closing head",
			html:     "<html><head><title>T</title></head><body></body></html>",
			css:      []string{"p{}"},
			expected: "<html><head><title>T</title><style>p{}</style>\n</head><body></body></html>",
		},
		{
			name:     "keeps stylesheet order",
			html:     "<head></head>",
			css:      []string{"a{}", "b{}"},
			expected: "<head><style>a{}</style>\n<style>b{}</style>\n</head>",
		},
		{
			name:     "after body when no head",
			html:     `<body class="x">Hi</body>`,
			css:      []string{"p{}"},
			expected: `<body class="x"><style>p{}</style>` + "\nHi</body>",
		},
		{
			name:     "prepends to fragment",
			html:     "<p>Hi</p>",
			css:      []string{"p{}"},
			expected: "<style>p{}</style>\n<p>Hi</p>",
		},
		{
			name:     "sanitizes closing tags",
			html:     "<p>Hi</p>",
			css:      []string{"</style><script>alert(1)</script>"},
			expected: `<style><\/style><script>alert(1)<\/script></style>` + "\n<p>Hi</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := InjectCSS(tt.html, tt.css...); got != tt.expected {
				t.Errorf("InjectCSS() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTOCOptionsFromMetadata(t *testing.T) {
	t.Parallel()

	meta := func(kv ...string) *Metadata {
		m := NewMetadata()
		for i := 0; i+1 < len(kv); i += 2 {
			m.Set(kv[i], kv[i+1])
		}
		return m
	}

	tests := []struct {
		name string
		meta *Metadata
		want *TOCOptions
	}{
		{
			name: "absent",
			meta: meta("title", "X"),
			want: nil,
		},
		{
			name: "disabled",
			meta: meta("toc", "false"),
			want: nil,
		},
		{
			name: "not a boolean",
			meta: meta("toc", "maybe"),
			want: nil,
		},
		{
			name: "defaults",
			meta: meta("toc", "true"),
			want: &TOCOptions{Title: DefaultTOCTitle, MinDepth: 1, MaxDepth: DefaultTOCDepth},
		},
		{
			name: "custom title and depth",
			meta: meta("toc", "true", "toc-title", "Outline", "toc-depth", "2"),
			want: &TOCOptions{Title: "Outline", MinDepth: 1, MaxDepth: 2},
		},
		{
			name: "empty title hides heading",
			meta: meta("toc", "true", "toc-title", ""),
			want: &TOCOptions{Title: "", MinDepth: 1, MaxDepth: DefaultTOCDepth},
		},
		{
			name: "out of range depth ignored",
			meta: meta("toc", "true", "toc-depth", "9"),
			want: &TOCOptions{Title: DefaultTOCTitle, MinDepth: 1, MaxDepth: DefaultTOCDepth},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := TOCOptionsFromMetadata(tt.meta)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("TOCOptionsFromMetadata() = %+v, want %+v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("TOCOptionsFromMetadata() = %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestExtractHeadings(t *testing.T) {
	t.Parallel()

	body := `<h1 id="intro">Intro</h1>
<p>text</p>
<div class="qmd-callout-body"><h2 id="nested">Nested <em>heading</em></h2></div>
<h3>No id</h3>
<h4 id="deep">Deep</h4>
<h2 id="amp">Q &amp; A</h2>`

	root, _, err := parseHTML(body)
	if err != nil {
		t.Fatalf("parseHTML() error = %v", err)
	}

	got := extractHeadings(root, 1, 3)
	want := []headingInfo{
		{Level: 1, ID: "intro", Text: "Intro"},
		{Level: 2, ID: "nested", Text: "Nested heading"},
		{Level: 2, ID: "amp", Text: "Q & A"},
	}

	if len(got) != len(want) {
		t.Fatalf("extractHeadings() returned %d headings, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("heading %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestNumberingState_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		levels     []int
		want       []string
		wantDepths []int
	}{
		{
			name:       "sequential h1s",
			levels:     []int{1, 1, 1},
			want:       []string{"1.", "2.", "3."},
			wantDepths: []int{1, 1, 1},
		},
		{
			name:       "h1 h2 h3 nested",
			levels:     []int{1, 2, 3},
			want:       []string{"1.", "1.1.", "1.1.1."},
			wantDepths: []int{1, 2, 3},
		},
		{
			name:       "return to h2 resets h3",
			levels:     []int{1, 2, 3, 2},
			want:       []string{"1.", "1.1.", "1.1.1.", "1.2."},
			wantDepths: []int{1, 2, 3, 2},
		},
		{
			name:       "normalization starts at h2",
			levels:     []int{2, 2, 3},
			want:       []string{"1.", "2.", "2.1."},
			wantDepths: []int{1, 1, 2},
		},
		{
			name:       "gap skipping h1 to h4",
			levels:     []int{1, 4, 4},
			want:       []string{"1.", "1.1.", "1.1.1."},
			wantDepths: []int{1, 2, 3},
		},
		{
			name:       "complex sequence",
			levels:     []int{1, 2, 2, 3, 2, 1, 2},
			want:       []string{"1.", "1.1.", "1.2.", "1.2.1.", "1.3.", "2.", "2.1."},
			wantDepths: []int{1, 2, 2, 3, 2, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state := &numberingState{}
			for i, level := range tt.levels {
				got, depth := state.next(level)
				if got != tt.want[i] {
					t.Errorf("next(%d) at step %d = %q, want %q", level, i, got, tt.want[i])
				}
				if depth != tt.wantDepths[i] {
					t.Errorf("next(%d) at step %d depth = %d, want %d", level, i, depth, tt.wantDepths[i])
				}
			}
		})
	}
}

func TestGenerateNumberedTOC(t *testing.T) {
	t.Parallel()

	t.Run("empty headings", func(t *testing.T) {
		t.Parallel()

		if got := generateNumberedTOC(nil, "Contents"); got != "" {
			t.Errorf("generateNumberedTOC(nil) = %q, want empty", got)
		}
	})

	t.Run("escapes title and text", func(t *testing.T) {
		t.Parallel()

		got := generateNumberedTOC([]headingInfo{
			{Level: 1, ID: "a", Text: "<b>A</b>"},
			{Level: 2, ID: "b", Text: "B"},
		}, "<i>T</i>")

		for _, want := range []string{
			`<h2 class="toc-title">&lt;i&gt;T&lt;/i&gt;</h2>`,
			`<a href="#a">1. &lt;b&gt;A&lt;/b&gt;</a>`,
			`style="padding-left:1.5em"><a href="#b">1.1. B</a>`,
		} {
			if !strings.Contains(got, want) {
				t.Errorf("generateNumberedTOC() = %q, want to contain %q", got, want)
			}
		}
	})
}

func TestInjectTOC(t *testing.T) {
	t.Parallel()

	body := `<h1 id="one">One</h1><p>x</p><h2 id="two">Two</h2>`

	t.Run("nil options unchanged", func(t *testing.T) {
		t.Parallel()

		got, err := InjectTOC(body, nil)
		if err != nil {
			t.Fatalf("InjectTOC() error = %v", err)
		}
		if got != body {
			t.Errorf("InjectTOC() = %q, want unchanged", got)
		}
	})

	t.Run("prepends toc", func(t *testing.T) {
		t.Parallel()

		got, err := InjectTOC(body, &TOCOptions{Title: "Contents", MinDepth: 1, MaxDepth: 3})
		if err != nil {
			t.Fatalf("InjectTOC() error = %v", err)
		}
		if !strings.HasPrefix(got, `<nav class="toc">`) {
			t.Errorf("InjectTOC() = %q, want toc first", got)
		}
		if !strings.HasSuffix(got, body) {
			t.Errorf("InjectTOC() = %q, want body kept verbatim after toc", got)
		}
		if !strings.Contains(got, `href="#two">1.1. Two`) {
			t.Errorf("InjectTOC() = %q, want nested entry", got)
		}
	})

	t.Run("no qualifying headings", func(t *testing.T) {
		t.Parallel()

		got, err := InjectTOC(`<h5 id="x">X</h5>`, &TOCOptions{MinDepth: 1, MaxDepth: 3})
		if err != nil {
			t.Fatalf("InjectTOC() error = %v", err)
		}
		if got != `<h5 id="x">X</h5>` {
			t.Errorf("InjectTOC() = %q, want unchanged", got)
		}
	})
}
