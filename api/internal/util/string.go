package util

import "strings"

// StripCodeFences removes a surrounding markdown fence such as ```latex ... ```.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string (latex, tex, ...)
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, `\{}`) {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Truncate cuts s to n bytes and marks the cut.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
