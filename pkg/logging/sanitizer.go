// Package logging scrubs credentials out of text that is logged or
// stored in user-visible status records.
package logging

import (
	"regexp"
)

// RedactedText is the replacement text for sensitive data
const RedactedText = "[REDACTED]"

var (
	// OAuth bearer tokens, as they appear in echoed request headers
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._\-/]+`)

	// Google OAuth access/refresh tokens passed as query parameters
	tokenParamPattern = regexp.MustCompile(`(?i)(access_token|refresh_token|token)=[^;&\s"]+`)

	// API keys in query parameters or headers
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{20,}`)
)

// Sanitize removes credential material from a string.
// Use this before logging anything that may echo a request.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}

	sanitized := bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	sanitized = tokenParamPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)

	return sanitized
}

// SanitizeError sanitizes an error message for logging or for storage
// in a status record. External API errors can echo the failing request,
// credentials included.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
