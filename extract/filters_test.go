package extract

import "testing"

func TestFilters(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		in     string
		want   string
	}{
		{"year plain", ExtractYear, "2019", "2019"},
		{"year copyright", ExtractYear, "c1998.", "1998"},
		{"year none", ExtractYear, "n.d.", ""},
		{"in prefix", StripInPrefix, "In: Journal of Testing", "Journal of Testing"},
		{"in prefix lower", StripInPrefix, "in:Journal", "Journal"},
		{"in prefix kept mid-string", StripInPrefix, "Living In: Places", "Living In: Places"},
		{"page range", ExtractPageRange, "S. 45 - 60", "45-60"},
		{"single page", ExtractPageRange, "p. 7", "7"},
		{"lone dash", ExtractPageRange, "-", ""},
		{"open range", ExtractPageRange, "45-", "45"},
		{"punctuation", TrimPunctuation, "Title /", "Title"},
		{"digits", DigitsOnly, "[ca. 2001]", "2001"},
		{"chain", Chain(StripInPrefix, ExtractYear), "In: Annual 2004", "2004"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterByName(t *testing.T) {
	f, ok := FilterByName("strip_in")
	if !ok {
		t.Fatal("strip_in not registered")
	}
	if got := f("In: X"); got != "X" {
		t.Errorf("got %q", got)
	}
	if _, ok := FilterByName("nope"); ok {
		t.Error("unknown filter resolved")
	}

	got := Apply([]string{"a 1999", "none", "2001"}, ExtractYear)
	if len(got) != 2 || got[0] != "1999" || got[1] != "2001" {
		t.Errorf("Apply = %q", got)
	}
}
