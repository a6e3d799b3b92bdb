package pipeline

import "testing"

func TestStripLatexNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"newpage with newline", "A\n\\newpage\nB", "A\nB"},
		{"all commands", "\\newpage \\pagebreak \\clearpage \\cleardoublepage \\noindent Text", "Text"},
		{"trailing whitespace removed", "\\noindent   \n\n  Para", "Para"},
		{"longer command name untouched", "\\newpages and \\noindentation", "\\newpages and \\noindentation"},
		{"command followed by punctuation", "\\newpage.", "."},
		{"command followed by brace", "\\noindent{x}", "{x}"},
		{"other commands untouched", "\\textbf{x} \\section{y}", "\\textbf{x} \\section{y}"},
		{"joined by removal", "\\new\\newpage page", ""},
		{"no commands", "plain text", "plain text"},
		{"empty", "", ""},
		{"code span kept", "`\\newpage` and \\newpage x", "`\\newpage` and x"},
		{"fenced code kept", "```tex\n\\newpage\n```\n\\noindent Text", "```tex\n\\newpage\n```\nText"},
		{"indented code kept", "Example:\n\n    \\clearpage\n", "Example:\n\n    \\clearpage\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := StripLatexNoise(tt.input); got != tt.want {
				t.Errorf("StripLatexNoise(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStripLatexNoise_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"\\newpage\\newpage text",
		"\\new\\newpage page",
		"\\noindent\\noindentation\\clearpage",
		"A \\pagebreak\n\\cleardoublepage B",
	}

	for _, input := range inputs {
		once := StripLatexNoise(input)
		twice := StripLatexNoise(once)
		if once != twice {
			t.Errorf("StripLatexNoise not idempotent for %q: once = %q, twice = %q", input, once, twice)
		}
	}
}
