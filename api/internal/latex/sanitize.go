// Package latex turns source text into a PDF with an external compiler.
package latex

import "strings"

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Sanitize drops blank and whitespace-only lines and rejoins the rest with "\n".
// "\r\n" and a lone "\r" both end a line.
func Sanitize(code string) string {
	lines := strings.Split(newlines.Replace(code), "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
