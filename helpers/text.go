package helpers

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlTagRegex     = regexp.MustCompile(`<[^>]*>`)
	htmlCommentRegex = regexp.MustCompile(`<!--[\s\S]*?-->`)
	brTagRegex       = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockEndRegex    = regexp.MustCompile(`(?i)</(?:p|div|li|h[1-6]|blockquote|tr)>`)
	multiSpaceRegex  = regexp.MustCompile(`[\s\p{Zs}]+`)
)

// IsHTML checks if a string appears to contain HTML markup. Summaries
// harvested from publisher feeds (520 $a) often do.
func IsHTML(s string) bool {
	return htmlTagRegex.MatchString(s)
}

// CleanText removes HTML tags and comments, decodes entities and collapses
// whitespace to single spaces.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	if IsHTML(s) {
		s = htmlCommentRegex.ReplaceAllString(s, "")
		s = blockEndRegex.ReplaceAllString(s, " ")
		s = brTagRegex.ReplaceAllString(s, " ")
		s = htmlTagRegex.ReplaceAllString(s, "")
	}
	s = html.UnescapeString(s)
	return strings.TrimSpace(multiSpaceRegex.ReplaceAllString(s, " "))
}

// TruncateText truncates text to at most maxLen bytes, preferring a word
// boundary and adding an ellipsis.
func TruncateText(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}

	truncated := s[:maxLen-3]
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > maxLen/2 {
		truncated = truncated[:lastSpace]
	}
	// Do not leave half a UTF-8 sequence behind.
	truncated = strings.ToValidUTF8(truncated, "")

	return truncated + "..."
}
