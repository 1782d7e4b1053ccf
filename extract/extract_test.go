package extract

import (
	"reflect"
	"testing"

	"github.com/finc/marcfacts/marc"
)

func TestExtractSubfields(t *testing.T) {
	f := marc.Field{Tag: "245", Subfields: []marc.Subfield{
		{Code: "b", Value: "Second"},
		{Code: "a", Value: "First"},
		{Code: "c", Value: "   "},
		{Code: "a", Value: ""},
		{Code: "n", Value: "Part 2"},
	}}

	tests := []struct {
		name   string
		codes  []string
		concat bool
		sep    string
		want   []string
	}{
		{"keeps field order", []string{"a", "b"}, false, "", []string{"Second", "First"}},
		{"drops blanks", []string{"c"}, false, "", nil},
		{"concat", []string{"a", "b", "n"}, true, " ; ", []string{"Second ; First ; Part 2"}},
		{"concat nothing", []string{"c", "z"}, true, " ", nil},
		{"all codes", nil, false, "", []string{"Second", "First", "Part 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSubfields(f, tt.codes, tt.concat, tt.sep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveFieldSpec(t *testing.T) {
	rec := marc.NewRecord("00000naa a2200000 c 4500").
		AddDataField("773", "0", "8", "t", "  ", "g", "12 (2019)").
		AddDataField("490", "0", " ", "a", "Series title").
		AddDataField("780", "0", "0", "t", "Earlier title")

	tests := []struct {
		name  string
		specs []Spec
		want  []string
	}{
		{"first non-empty wins", Specs("773t", "490a", "780t"), []string{"Series title"}},
		{"later specs never consulted", Specs("780t", "490a"), []string{"Earlier title"}},
		{"exhausted", Specs("772t", "773t"), nil},
		{"indicator filter", Specs("490|*0|a", "490|0#|a"), []string{"Series title"}},
		{"empty chain", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFieldSpec(rec, tt.specs, false)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveFieldSpecRepeatedFields(t *testing.T) {
	rec := marc.NewRecord("00000nam a2200000 c 4500").
		AddControlField("001", "42").
		AddDataField("020", " ", " ", "a", "3-16-148410-0", "q", "pbk.").
		AddDataField("020", " ", " ", "a", "978-3-16-148410-0")

	got := ResolveFieldSpec(rec, Specs("020aq"), true)
	want := []string{"3-16-148410-0 pbk.", "978-3-16-148410-0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := First(rec, MustParseSpec("001")); got != "42" {
		t.Errorf("First(001) = %q", got)
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    Spec
		wantErr bool
	}{
		{in: "245ac", want: Spec{Tag: "245", Ind1: "*", Ind2: "*", Codes: []string{"a", "c"}}},
		{in: "100", want: Spec{Tag: "100", Ind1: "*", Ind2: "*"}},
		{in: "650|*0|x", want: Spec{Tag: "650", Ind1: "*", Ind2: "0", Codes: []string{"x"}}},
		{in: "264|#1|b", want: Spec{Tag: "264", Ind1: " ", Ind2: "1", Codes: []string{"b"}}},
		{in: "24", wantErr: true},
		{in: "650|0|x", wantErr: true},
		{in: "245a-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSpec(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSpec(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec(%q): %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if tt.in != got.String() {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}
