package validators

import "strings"

// SanitizeString trims surrounding whitespace and caps free-text query
// inputs before they reach a LIKE clause.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
