package helpers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ParsedName is a personal name split into its parts.
type ParsedName struct {
	FullName string `json:"full_name"`
	Family   string `json:"family,omitempty"`
	Given    string `json:"given,omitempty"`
	Middle   string `json:"middle,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
}

var (
	suffixes = []string{"Jr.", "Jr", "Sr.", "Sr", "III", "II", "IV", "PhD", "Ph.D.", "MD", "M.D."}

	// Nobiliary particles. In inverted MARC headings they trail the given
	// name ("Goethe, Johann Wolfgang von").
	prefixes = []string{"van", "von", "vom", "zu", "de", "del", "della", "di", "da", "le", "la", "du", "des", "den", "der", "ter", "ten", "mc", "mac", "o'", "d'", "al-", "el-", "ibn"}

	invertedNameRegex = regexp.MustCompile(`^([^,]+),\s*(.+)$`)

	// ISBD punctuation left on 100/700 $a.
	headingTrailer = regexp.MustCompile(`[\s,.;:/]+$`)
)

// ParseName splits a name in "Family, Given Middle" (MARC heading) or
// "Given Middle Family" form. It returns nil for blank input.
func ParseName(name string) *ParsedName {
	name = trimHeading(name)
	if name == "" {
		return nil
	}

	result := &ParsedName{FullName: name}

	if m := invertedNameRegex.FindStringSubmatch(name); m != nil {
		result.Family = strings.TrimSpace(m[1])
		rest := strings.TrimSpace(m[2])
		rest, result.Suffix = extractSuffix(rest)

		parts := strings.Fields(rest)
		// Trailing particle: "Johann Wolfgang von".
		for len(parts) > 1 && isPrefix(parts[len(parts)-1]) {
			result.Prefix = strings.TrimSpace(parts[len(parts)-1] + " " + result.Prefix)
			parts = parts[:len(parts)-1]
		}
		if len(parts) > 0 {
			result.Given = parts[0]
		}
		if len(parts) > 1 {
			result.Middle = strings.Join(parts[1:], " ")
		}
		return result
	}

	name, result.Suffix = extractSuffix(name)
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		result.Family = parts[0]
		return result
	}

	familyStart := len(parts) - 1
	for familyStart > 1 && isPrefix(parts[familyStart-1]) {
		familyStart--
	}
	if familyStart < len(parts)-1 {
		result.Prefix = strings.Join(parts[familyStart:len(parts)-1], " ")
	}
	result.Family = parts[len(parts)-1]
	result.Given = parts[0]
	if familyStart > 1 {
		result.Middle = strings.Join(parts[1:familyStart], " ")
	}
	return result
}

func trimHeading(name string) string {
	name = headingTrailer.ReplaceAllString(strings.TrimSpace(name), "")
	// A trailing initial keeps its period.
	if f := strings.Fields(name); len(f) > 1 && utf8.RuneCountInString(f[len(f)-1]) == 1 {
		name += "."
	}
	return name
}

// GivenNames joins the given and middle names.
func (p *ParsedName) GivenNames() string {
	return strings.TrimSpace(p.Given + " " + p.Middle)
}

// Inverted renders "Family, Given Middle Suffix". A nobiliary particle
// follows the given names, as in German headings.
func (p *ParsedName) Inverted() string {
	if p == nil {
		return ""
	}
	result := p.Family
	given := p.GivenNames()
	if p.Prefix != "" {
		given = strings.TrimSpace(given + " " + p.Prefix)
	}
	if given != "" {
		result += ", " + given
	}
	if p.Suffix != "" {
		result += " " + p.Suffix
	}
	return result
}

// Direct renders "Given Middle Prefix Family Suffix".
func (p *ParsedName) Direct() string {
	if p == nil {
		return ""
	}
	var parts []string
	for _, s := range []string{p.Given, p.Middle, p.Prefix, p.Family, p.Suffix} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func extractSuffix(name string) (string, string) {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, ", "+suffix) {
			return strings.TrimSuffix(name, ", "+suffix), suffix
		}
		if strings.HasSuffix(name, " "+suffix) {
			return strings.TrimSuffix(name, " "+suffix), suffix
		}
	}
	return name, ""
}

func isPrefix(word string) bool {
	lower := strings.ToLower(word)
	for _, prefix := range prefixes {
		if lower == prefix || lower == strings.TrimSuffix(prefix, "'") {
			return true
		}
	}
	return false
}
