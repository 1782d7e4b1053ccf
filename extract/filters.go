package extract

import (
	"regexp"
	"strings"
)

// Filter post-processes a resolved value.
type Filter func(string) string

var (
	yearPattern      = regexp.MustCompile(`\d{4}`)
	inPrefixPattern  = regexp.MustCompile(`(?i)^\s*in\s*:\s*`)
	pageRangePattern = regexp.MustCompile(`(\d+)(?:\s*[-‐‑–—]\s*(\d+))?`)
	nonDigitPattern  = regexp.MustCompile(`\D+`)
)

var namedFilters = map[string]Filter{
	"year":        ExtractYear,
	"strip_in":    StripInPrefix,
	"page_range":  ExtractPageRange,
	"punctuation": TrimPunctuation,
	"digits":      DigitsOnly,
	"trim":        strings.TrimSpace,
}

// FilterByName looks up a filter for profile configuration.
func FilterByName(name string) (Filter, bool) {
	f, ok := namedFilters[name]
	return f, ok
}

// FilterNames lists the names accepted by FilterByName.
func FilterNames() []string {
	names := make([]string, 0, len(namedFilters))
	for n := range namedFilters {
		names = append(names, n)
	}
	return names
}

// Chain applies filters left to right.
func Chain(filters ...Filter) Filter {
	return func(s string) string {
		for _, f := range filters {
			s = f(s)
		}
		return s
	}
}

// Apply runs f over values and drops results that became empty.
func Apply(values []string, f Filter) []string {
	var out []string
	for _, v := range values {
		if v = f(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ExtractYear returns the first run of four digits.
func ExtractYear(s string) string {
	return yearPattern.FindString(s)
}

// StripInPrefix removes a leading "In:" marker from container titles.
func StripInPrefix(s string) string {
	return strings.TrimSpace(inPrefixPattern.ReplaceAllString(s, ""))
}

// PageRange returns the start and optional end page found in s. A lone
// dash yields nothing.
func PageRange(s string) (start, end string) {
	m := pageRangePattern.FindStringSubmatch(s)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// ExtractPageRange normalizes "S. 45 - 60" to "45-60" and "p. 7" to "7".
func ExtractPageRange(s string) string {
	start, end := PageRange(s)
	if start == "" {
		return ""
	}
	if end == "" {
		return start
	}
	return start + "-" + end
}

// TrimPunctuation strips trailing ISBD punctuation.
func TrimPunctuation(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), " /:;,.="))
}

// DigitsOnly removes every non-digit.
func DigitsOnly(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}
