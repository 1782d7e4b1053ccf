package helpers

import (
	"strconv"
	"strings"
)

// NormalizeISBN strips hyphens and trailing qualifiers ("3-16-148410-X (kart.)")
// and upper-cases a final check character.
func NormalizeISBN(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t("); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToUpper(s)
}

// ValidISBN10 checks length and the mod-11 check digit of a normalized ISBN-10.
func ValidISBN10(isbn string) bool {
	if len(isbn) != 10 {
		return false
	}
	sum := 0
	for i, c := range isbn {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// ValidISBN13 checks length, prefix and the mod-10 check digit of a
// normalized ISBN-13.
func ValidISBN13(isbn string) bool {
	if len(isbn) != 13 || !(strings.HasPrefix(isbn, "978") || strings.HasPrefix(isbn, "979")) {
		return false
	}
	sum := 0
	for i, c := range isbn {
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return sum%10 == 0
}

// ISBNTo13 converts an ISBN-10 to ISBN-13 by prepending 978 and computing
// the check digit. Returns "" if the input is not a valid ISBN-10.
func ISBNTo13(isbn10 string) string {
	if !ValidISBN10(isbn10) {
		return ""
	}
	base := "978" + isbn10[:9]
	sum := 0
	for i, c := range base {
		d := int(c - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	check := (10 - sum%10) % 10
	return base + strconv.Itoa(check)
}

// ISBNTo10 converts a 978-prefixed ISBN-13 to ISBN-10.
// Returns "" if the input is not a convertible ISBN-13.
func ISBNTo10(isbn13 string) string {
	if !ValidISBN13(isbn13) || !strings.HasPrefix(isbn13, "978") {
		return ""
	}
	base := isbn13[3:12]
	sum := 0
	for i, c := range base {
		sum += int(c-'0') * (10 - i)
	}
	check := (11 - sum%11) % 11
	if check == 10 {
		return base + "X"
	}
	return base + strconv.Itoa(check)
}

// CleanISBN picks the first valid ISBN-10 from values, falling back to the
// first valid ISBN-13. Values are normalized first.
func CleanISBN(values []string) string {
	var first13 string
	for _, v := range values {
		n := NormalizeISBN(v)
		if ValidISBN10(n) {
			return n
		}
		if first13 == "" && ValidISBN13(n) {
			first13 = n
		}
	}
	return first13
}

// NormalizeISSN returns the ISSN as NNNN-NNNC, or "" when s has no
// eight-character ISSN at its start.
func NormalizeISSN(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t("); i >= 0 {
		s = s[:i]
	}
	s = strings.ToUpper(strings.ReplaceAll(s, "-", ""))
	if len(s) != 8 {
		return ""
	}
	return s[:4] + "-" + s[4:]
}

// ValidISSN checks the mod-11 check digit of an ISSN in either form.
func ValidISSN(issn string) bool {
	n := NormalizeISSN(issn)
	if n == "" {
		return false
	}
	digits := n[:4] + n[5:]
	sum := 0
	for i, c := range digits {
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c == 'X' && i == 7:
			d = 10
		default:
			return false
		}
		sum += d * (8 - i)
	}
	return sum%11 == 0
}

// CleanISSN returns the first valid ISSN in values, hyphenated.
func CleanISSN(values []string) string {
	for _, v := range values {
		if ValidISSN(v) {
			return NormalizeISSN(v)
		}
	}
	return ""
}
