package marc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

// loadFixture reads a file from the testdata directory.
func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("loading fixture %s: %v", name, err)
	}
	return data
}

// iso2709 assembles a binary record with a correct directory. Control
// fields are given as "tag=value", data fields as "tag=ind1ind2\x1fa...".
func iso2709(t *testing.T, leader string, fields ...string) string {
	t.Helper()
	var dir, body strings.Builder
	for _, f := range fields {
		tag, data, ok := strings.Cut(f, "=")
		if !ok {
			t.Fatalf("bad field spec %q", f)
		}
		data += "\x1e"
		fmt.Fprintf(&dir, "%s%04d%05d", tag, len(data), body.Len())
		body.WriteString(data)
	}
	dir.WriteString("\x1e")
	base := 24 + dir.Len()
	total := base + body.Len() + 1
	l := fmt.Sprintf("%05d", total) + leader[5:12] + fmt.Sprintf("%05d", base) + leader[17:]
	return l + dir.String() + body.String() + "\x1d"
}

func TestParseXMLCollection(t *testing.T) {
	records, err := ParseAll(bytes.NewReader(loadFixture(t, "collection.xml")))
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if first.ID() != "1000000001" {
		t.Errorf("ID() = %q", first.ID())
	}
	if first.Leader != "00000nab a2200000 c 4500" {
		t.Errorf("Leader = %q", first.Leader)
	}
	f, ok := first.Field("773")
	if !ok {
		t.Fatal("773 missing")
	}
	if got := f.Subfield("g"); got != "H. 3, S. 45-60 (2019)" {
		t.Errorf("773$g = %q", got)
	}
	if f.Ind1 != "0" || f.Ind2 != "8" {
		t.Errorf("773 indicators = %q%q, want 08", f.Ind1, f.Ind2)
	}
}

func TestParseXMLRepair(t *testing.T) {
	rec, err := Parse(string(loadFixture(t, "broken.xml")))
	if err != nil {
		t.Fatalf("Parse after repair: %v", err)
	}
	f, _ := rec.Field("245")
	if got := f.Subfield("a"); got != "Fish & chips" {
		t.Errorf("245$a = %q, want %q", got, "Fish & chips")
	}
}

func TestParseUnparsable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", "   "},
		{"unterminated xml", "<record><leader>00000nam a2200000 c 4500</leader><datafield"},
		{"xml without record", "<collection/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			var unparsable *UnparsableRecordError
			if !errors.As(err, &unparsable) {
				t.Fatalf("got %v, want UnparsableRecordError", err)
			}
		})
	}
}

func TestParseBinary(t *testing.T) {
	raw := iso2709(t, "00000nam a2200000 c 4500",
		"001=987654321",
		"008=190101s2019    gw            000 0 ger d",
		"245=10\x1faBinary title\x1fbsub",
		"650= 7\x1faFirst\x1faSecond",
	)

	rec, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rec.ID() != "987654321" {
		t.Errorf("ID() = %q", rec.ID())
	}
	f, ok := rec.Field("650")
	if !ok {
		t.Fatal("650 missing")
	}
	if got := f.SubfieldValues("a"); len(got) != 2 || got[0] != "First" || got[1] != "Second" {
		t.Errorf("650$a = %v", got)
	}
}

func TestParseBinaryLegacyEntities(t *testing.T) {
	raw := iso2709(t, "00000nam a2200000 c 4500",
		"001=111",
		"245=10\x1faEntity title",
	)
	encoded := strings.NewReplacer("\x1d", "#29;", "\x1e", "#30;", "\x1f", "#31;").Replace(raw)

	rec, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, _ := rec.Field("245")
	if got := f.Subfield("a"); got != "Entity title" {
		t.Errorf("245$a = %q", got)
	}
}

func TestParseLeaderWidth(t *testing.T) {
	raw := `<record><leader>00000nam</leader><controlfield tag="001">1</controlfield></record>`

	_, err := Parse(raw)
	var malformed *MalformedRecordError
	if !errors.As(err, &malformed) {
		t.Fatalf("strict Parse: got %v, want MalformedRecordError", err)
	}

	rec, err := Parse(raw, Lenient())
	if err != nil {
		t.Fatalf("lenient Parse: %v", err)
	}
	if _, err := rec.LeaderByte(19); err == nil {
		t.Error("LeaderByte(19) on short leader should fail")
	}
}

func TestSplitBinaryStream(t *testing.T) {
	a := iso2709(t, "00000nam a2200000 c 4500", "001=a")
	b := iso2709(t, "00000nam a2200000 c 4500", "001=b")

	chunks := Split([]byte(a + b + "\n"))
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}

	records, err := ParseAll(strings.NewReader(a + b))
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if records[1].ID() != "b" {
		t.Errorf("second ID = %q", records[1].ID())
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	rec := sampleRecord()
	rec.Leader = "00000naa a2200000 c 4500"

	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Parse(buf.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, _ := got.Field("245")
	if f.Subfield("a") != "Testing things" {
		t.Errorf("245$a = %q", f.Subfield("a"))
	}
	if len(got.ControlFields("007")) != 2 {
		t.Errorf("007 count = %d, want 2", len(got.ControlFields("007")))
	}
}
