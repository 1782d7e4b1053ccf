// Package extract pulls subfield values out of MARC records using field
// specs and fallback chains.
package extract

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/marc"
)

// Spec selects subfields of one tag, optionally restricted by indicators.
// An empty Codes list selects every subfield.
type Spec struct {
	Tag   string
	Ind1  string
	Ind2  string
	Codes []string
}

// ParseSpec parses a tag query: "245ac", "773" or "650|*0|x". Between the
// pipes "*" matches any indicator and "#" a blank one.
func ParseSpec(q string) (Spec, error) {
	q = strings.TrimSpace(q)
	if len(q) < 3 {
		return Spec{}, fmt.Errorf("field spec %q: tag must have 3 characters", q)
	}
	s := Spec{Tag: q[:3], Ind1: "*", Ind2: "*"}
	for _, r := range s.Tag {
		if !isAlnum(r) {
			return Spec{}, fmt.Errorf("field spec %q: invalid tag", q)
		}
	}

	rest := q[3:]
	if strings.HasPrefix(rest, "|") {
		if len(rest) < 4 || rest[3] != '|' {
			return Spec{}, fmt.Errorf("field spec %q: indicators must be written as |xy|", q)
		}
		s.Ind1, s.Ind2 = indicatorQuery(rest[1]), indicatorQuery(rest[2])
		rest = rest[4:]
	}
	for _, r := range rest {
		if !isAlnum(r) {
			return Spec{}, fmt.Errorf("field spec %q: invalid subfield code %q", q, r)
		}
		s.Codes = append(s.Codes, string(r))
	}
	return s, nil
}

// MustParseSpec is ParseSpec for package-level tables.
func MustParseSpec(q string) Spec {
	s, err := ParseSpec(q)
	if err != nil {
		panic(err)
	}
	return s
}

// Specs parses a fallback chain of queries, panicking on a bad one.
func Specs(qs ...string) []Spec {
	out := make([]Spec, 0, len(qs))
	for _, q := range qs {
		out = append(out, MustParseSpec(q))
	}
	return out
}

func indicatorQuery(b byte) string {
	if b == '#' {
		return " "
	}
	return string(b)
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// String renders the spec back into query form.
func (s Spec) String() string {
	var sb strings.Builder
	sb.WriteString(s.Tag)
	if (s.Ind1 != "" && s.Ind1 != "*") || (s.Ind2 != "" && s.Ind2 != "*") {
		sb.WriteByte('|')
		sb.WriteString(indicatorString(s.Ind1))
		sb.WriteString(indicatorString(s.Ind2))
		sb.WriteByte('|')
	}
	sb.WriteString(strings.Join(s.Codes, ""))
	return sb.String()
}

func indicatorString(ind string) string {
	switch ind {
	case "", "*":
		return "*"
	case " ":
		return "#"
	default:
		return ind
	}
}

// Matches reports whether f carries the spec's tag and indicators.
func (s Spec) Matches(f marc.Field) bool {
	if f.Tag != s.Tag {
		return false
	}
	return indicatorMatches(s.Ind1, f.Ind1) && indicatorMatches(s.Ind2, f.Ind2)
}

func indicatorMatches(want, got string) bool {
	if want == "" || want == "*" {
		return true
	}
	if want == " " {
		return got == " " || got == ""
	}
	return want == got
}

// UnmarshalYAML reads a spec from its query string.
func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	var q string
	if err := value.Decode(&q); err != nil {
		return err
	}
	parsed, err := ParseSpec(q)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML writes a spec as its query string.
func (s Spec) MarshalYAML() (any, error) {
	return s.String(), nil
}
