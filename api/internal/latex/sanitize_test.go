package latex

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"only blanks", "\n  \n\t\n", ""},
		{"already clean", "a\nb", "a\nb"},
		{"drops blank lines", "\\documentclass{article}\n\n\\begin{document}\n   \nHi\n\\end{document}\n",
			"\\documentclass{article}\n\\begin{document}\nHi\n\\end{document}"},
		{"keeps indentation", "  \\item x\n\n\t\\item y", "  \\item x\n\t\\item y"},
		{"crlf", "a\r\n\r\nb\r\n", "a\nb"},
		{"lone cr", "a\r  \r\rb\r", "a\nb"},
		{"mixed breaks", "a\r\n \rb\n\t\r\nc", "a\nb\nc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"x",
		"line one\n\n  \nline two\n\t\nline three",
		" leading\ntrailing \n\n\n",
		"\\section{A}\n\n\n\\section{B}\n \n\\section{C}",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		for _, l := range strings.Split(once, "\n") {
			if once != "" && strings.TrimSpace(l) == "" {
				t.Errorf("Sanitize(%q) kept a blank line: %q", in, once)
			}
		}
		if twice := Sanitize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}

		var want []string
		for _, l := range strings.Split(in, "\n") {
			if strings.TrimSpace(l) != "" {
				want = append(want, l)
			}
		}
		if got := Sanitize(in); got != strings.Join(want, "\n") {
			t.Errorf("order not preserved for %q: got %q", in, got)
		}
	}
}
