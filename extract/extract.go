package extract

import (
	"strings"

	"github.com/finc/marcfacts/marc"
)

// DefaultSeparator joins concatenated subfields.
const DefaultSeparator = " "

// ExtractSubfields returns the values of the requested codes in the order
// they occur in the field, not the order of codes. Empty and
// whitespace-only values are dropped. With concat the survivors are joined
// with sep into a single element; the result is empty when none survived.
func ExtractSubfields(f marc.Field, codes []string, concat bool, sep string) []string {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}

	var values []string
	for _, sf := range f.Subfields {
		if len(want) > 0 && !want[sf.Code] {
			continue
		}
		v := strings.TrimSpace(sf.Value)
		if v == "" {
			continue
		}
		values = append(values, v)
	}

	if concat && len(values) > 0 {
		return []string{strings.Join(values, sep)}
	}
	return values
}

// Values collects the extraction of s over every matching field. Control
// fields contribute their whole value.
func Values(rec *marc.Record, s Spec, concat bool, sep string) []string {
	var out []string
	for _, f := range rec.Fields {
		if !s.Matches(f) {
			continue
		}
		if f.IsControl() {
			if v := strings.TrimSpace(f.Value); v != "" {
				out = append(out, v)
			}
			continue
		}
		out = append(out, ExtractSubfields(f, s.Codes, concat, sep)...)
	}
	return out
}

// ResolveFieldSpec walks the fallback chain and returns the extraction of
// the first spec that yields a non-empty first value. Later specs are never
// consulted once one matched.
func ResolveFieldSpec(rec *marc.Record, specs []Spec, concat bool) []string {
	return ResolveFieldSpecSep(rec, specs, concat, DefaultSeparator)
}

// ResolveFieldSpecSep is ResolveFieldSpec with a custom separator.
func ResolveFieldSpecSep(rec *marc.Record, specs []Spec, concat bool, sep string) []string {
	for _, s := range specs {
		values := Values(rec, s, concat, sep)
		if len(values) > 0 && values[0] != "" {
			return values
		}
	}
	return nil
}

// First returns the first concatenated value of the chain, or "".
func First(rec *marc.Record, specs ...Spec) string {
	values := ResolveFieldSpec(rec, specs, true)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
