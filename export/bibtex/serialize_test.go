package bibtex

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/marc"
)

func newDriver(t *testing.T, rec *marc.Record) *driver.Driver {
	t.Helper()
	d, err := driver.New(rec)
	if err != nil {
		t.Fatalf("driver.New: %v", err)
	}
	return d
}

func TestSerializeArticle(t *testing.T) {
	d := newDriver(t, marc.NewRecord("00000naa a2200000 c 4500").
		AddControlField("001", "fis0815").
		AddControlField("003", "DE-Frei129").
		AddDataField("100", "1", " ", "a", "Schulz, Eva").
		AddDataField("245", "1", "0", "a", "Lernen & Lehren").
		AddDataField("773", "0", "8", "a", "In: Journal of Testing", "g", "H. 3, S. 45-60 (2019)", "x", "0028-0836"))

	var buf bytes.Buffer
	if err := (&Format{}).Serialize(context.Background(), &buf, []*driver.Driver{d}, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"@article{schulz2019,\n",
		"  title = {Lernen \\& Lehren},\n",
		"  author = {Schulz, Eva},\n",
		"  journal = {Journal of Testing},\n",
		"  number = {3},\n",
		"  pages = {45--60},\n",
		"  issn = {0028-0836},\n",
		"  year = {2019},\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestToEntryRoles(t *testing.T) {
	d := newDriver(t, marc.NewRecord("00000cam a2200000 c 4500").
		AddControlField("001", "99").
		AddDataField("245", "1", "0", "a", "Festschrift").
		AddDataField("264", " ", "1", "c", "2001").
		AddDataField("700", "1", " ", "a", "Lee, Jordan", "4", "ths").
		AddDataField("700", "1", " ", "a", "Rivera, Alex", "e", "Herausgeber").
		AddDataField("710", "2", " ", "a", "Universität Leipzig", "4", "aut"))

	e := toEntry(context.Background(), d)

	if e.Type != "book" {
		t.Errorf("type = %s", e.Type)
	}
	if len(e.Editor) != 1 || e.Editor[0].Name != "Rivera, Alex" {
		t.Fatalf("editor = %+v", e.Editor)
	}
	if len(e.Author) != 1 || !e.Author[0].Corporate {
		t.Fatalf("author = %+v", e.Author)
	}
	if got := formatPersons(e.Author); got != "{Universität Leipzig}" {
		t.Errorf("formatPersons = %q", got)
	}
	// The corporate author has no family name to key on.
	if e.Key != "universitt2001" {
		t.Errorf("key = %q", e.Key)
	}
}

func TestCitationKeyFallsBackToID(t *testing.T) {
	e := &Entry{}
	if got := citationKey(e, "fis0815"); got != "fis0815" {
		t.Errorf("key = %q", got)
	}
	if got := citationKey(e, ""); got != "unknownnd" {
		t.Errorf("key = %q", got)
	}
}

func TestEntryType(t *testing.T) {
	tests := []struct {
		formats []string
		want    string
	}{
		{nil, "misc"},
		{[]string{"Thesis"}, "phdthesis"},
		{[]string{"Manuscript", "Book"}, "unpublished"},
		{[]string{"Conference"}, "proceedings"},
		{[]string{"Map"}, "misc"},
	}
	for _, tt := range tests {
		if got := entryType(tt.formats); got != tt.want {
			t.Errorf("entryType(%v) = %q, want %q", tt.formats, got, tt.want)
		}
	}
}
