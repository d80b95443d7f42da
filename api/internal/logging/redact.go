package logging

import (
	"regexp"

	"go.uber.org/zap"
)

const RedactedPlaceholder = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`),     // Anthropic
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),         // OpenAI
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`),         // Google
	regexp.MustCompile(`\d{6,}:[a-zA-Z0-9_-]{30,}`),     // Telegram bot token
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)([?&]key=)[a-zA-Z0-9_-]{20,}`),
}

// Redact masks API keys and tokens that providers echo back in error text.
func Redact(s string) string {
	for _, re := range sensitivePatterns {
		s = re.ReplaceAllString(s, RedactedPlaceholder)
	}
	return s
}

// RedactedError is zap.Error with the message passed through Redact.
func RedactedError(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.String("error", Redact(err.Error()))
}
