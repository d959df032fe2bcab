// Package redact strips credentials, tokens and filesystem details from text
// before it is logged or echoed back to a client.
package redact

import (
	"net/url"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules run in order; credentials go before paths so a DSN is not half-matched.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|sqlite3?|file|db|database)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]+=*`),
		"Bearer " + RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(jwt_secret|api[_-]?key|secret|token)(['"\s:=]+)[A-Za-z0-9_\-.~+/!]{8,}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(
			`(?i)\b(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER|DROP)\b[\s\w,*()$?.:]+\b(FROM|INTO|SET|TABLE)\b(?:[\s\w,*()='"$?.:+]+)?`,
		),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`[A-Za-z]:\\[^\\\s]+(\\[^\\\s]+)+`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// DatabaseURL masks the password of a connection URL for logging while
// keeping the host and database visible.
func DatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "invalid-url"
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "****")
		}
	}
	return parsed.String()
}
