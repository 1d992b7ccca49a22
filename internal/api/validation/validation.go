package validation

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// emailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// uuidRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// resourceIDRegex validates resource identifiers like "projects",
	// "projects/secret-garden" or the path form "/hobbies/photography"
	resourceIDRegex = regexp.MustCompile(`^/?[a-zA-Z0-9][a-zA-Z0-9._\-]*(/[a-zA-Z0-9][a-zA-Z0-9._\-]*)*$`)

	// tokenRegex validates hex-encoded opaque tokens
	tokenRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// IsValidResourceID checks if the string is a well-formed resource
// identifier. Identifiers are slash-separated slugs, optionally rooted
// with a leading slash; no empty segments.
func IsValidResourceID(id string) bool {
	if len(id) > 255 {
		return false
	}
	return resourceIDRegex.MatchString(id)
}

// IsValidToken checks if the string looks like one of our opaque tokens
// (64 lowercase hex characters). Rejecting malformed tokens early keeps
// garbage out of the lookup path.
func IsValidToken(token string) bool {
	return tokenRegex.MatchString(token)
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// TruncateString truncates a string to maxLen characters
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
