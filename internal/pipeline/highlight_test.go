package pipeline

import (
	"strings"
	"testing"
)

func TestChromaHighlighter_Highlight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		inline       bool
		code         string
		lang         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "known language with classes",
			code:         "func main() {}\n",
			lang:         "go",
			wantContains: []string{`class="kd"`, "main"},
			wantExcludes: []string{"<pre", "style="},
		},
		{
			name:         "inline styles",
			inline:       true,
			code:         "func main() {}\n",
			lang:         "go",
			wantContains: []string{"style="},
			wantExcludes: []string{"<pre"},
		},
		{
			name:         "unknown language falls back",
			code:         "x < y\n",
			lang:         "no-such-language",
			wantContains: []string{"&lt;"},
			wantExcludes: []string{" < "},
		},
		{
			name:         "no language",
			code:         "a = 1\n",
			wantContains: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewChromaHighlighter("github", tt.inline)
			got, err := h.Highlight(tt.code, tt.lang)
			if err != nil {
				t.Fatalf("Highlight() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Highlight() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Highlight() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

func TestChromaCSS(t *testing.T) {
	t.Parallel()

	css, err := ChromaCSS("monokai")
	if err != nil {
		t.Fatalf("ChromaCSS() error = %v", err)
	}
	if !strings.Contains(css, ".chroma") {
		t.Errorf("ChromaCSS() = %q, want .chroma rules", css)
	}
}
