package csl

import (
	"bytes"
	"context"
	"encoding/json"
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

func TestToItemBook(t *testing.T) {
	d := newDriver(t, marc.NewRecord("00000cam a2200000 c 4500").
		AddControlField("001", "1012345678").
		AddControlField("003", "DE-627").
		AddDataField("020", " ", " ", "a", "3-16-148410-X").
		AddDataField("100", "1", " ", "a", "Goethe, Johann Wolfgang von", "4", "aut").
		AddDataField("245", "1", "0", "a", "Faust :", "b", "eine Tragödie").
		AddDataField("264", " ", "1", "a", "Leipzig", "b", "Insel", "c", "1912").
		AddDataField("490", "0", " ", "a", "Insel-Bücherei ;", "v", "1").
		AddDataField("700", "1", " ", "a", "Schmidt, Erich", "4", "edt").
		AddDataField("700", "1", " ", "a", "Taylor, Bayard", "4", "trl"))

	item := toItem(context.Background(), d)

	if item.ID != "1012345678" || item.Type != "book" {
		t.Errorf("id/type = %s/%s", item.ID, item.Type)
	}
	if item.Title != "Faust : eine Tragödie" {
		t.Errorf("title = %q", item.Title)
	}
	if len(item.Author) != 1 || item.Author[0].Family != "Goethe" || item.Author[0].Given != "Johann Wolfgang" || item.Author[0].Particle != "von" {
		t.Errorf("author = %+v", item.Author)
	}
	if len(item.Editor) != 1 || item.Editor[0].Family != "Schmidt" {
		t.Errorf("editor = %+v", item.Editor)
	}
	if len(item.Translator) != 1 || item.Translator[0].Family != "Taylor" {
		t.Errorf("translator = %+v", item.Translator)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 1912 {
		t.Errorf("issued = %+v", item.Issued)
	}
	if item.Publisher != "Insel" || item.PublisherPlace != "Leipzig" {
		t.Errorf("publisher = %q, %q", item.Publisher, item.PublisherPlace)
	}
	if item.CollectionTitle != "Insel-Bücherei" || item.CollectionNumber != "1" {
		t.Errorf("collection = %q %q", item.CollectionTitle, item.CollectionNumber)
	}
	if item.ISBN != "316148410X" {
		t.Errorf("ISBN = %q", item.ISBN)
	}
}

func TestSerializeArticle(t *testing.T) {
	d := newDriver(t, marc.NewRecord("00000naa a2200000 c 4500").
		AddControlField("001", "fis0815").
		AddControlField("003", "DE-Frei129").
		AddDataField("100", "1", " ", "a", "Schulz, Eva").
		AddDataField("245", "1", "0", "a", "Lernen im Netz").
		AddDataField("773", "0", "8", "a", "In: Journal of Testing", "g", "H. 3, S. 45-60 (2019)", "x", "0028-0836"))

	var buf bytes.Buffer
	if err := (&Format{}).Serialize(context.Background(), &buf, []*driver.Driver{d}, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var item JSONItem
	if err := json.Unmarshal(buf.Bytes(), &item); err != nil {
		t.Fatalf("single record should encode as an object: %v", err)
	}
	if item.Type != "article-journal" {
		t.Errorf("type = %s", item.Type)
	}
	if item.ContainerTitle != "Journal of Testing" || item.Issue != "3" || item.Page != "45-60" {
		t.Errorf("container = %+v", item)
	}
	if item.ISSN != "0028-0836" {
		t.Errorf("ISSN = %q", item.ISSN)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2019 {
		t.Errorf("issued = %+v", item.Issued)
	}
}

func TestSerializeMany(t *testing.T) {
	rec := marc.NewRecord("00000cam a2200000 c 4500").AddDataField("245", "1", "0", "a", "Ohne Autor")
	d := newDriver(t, rec)

	var buf bytes.Buffer
	if err := (&Format{}).Serialize(context.Background(), &buf, []*driver.Driver{d, d}, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var items []JSONItem
	if err := json.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("several records should encode as an array: %v", err)
	}
	if len(items) != 2 || items[0].ID != "unknownnd" {
		t.Errorf("items = %+v", items)
	}
}

func TestFormatType(t *testing.T) {
	tests := []struct {
		formats []string
		want    string
	}{
		{nil, "document"},
		{[]string{"Atlas"}, "map"},
		{[]string{"Thesis", "Book"}, "thesis"},
		{[]string{"VideoDisc"}, "motion_picture"},
		{[]string{"Website"}, "webpage"},
		{[]string{"Unheard-of"}, "document"},
	}
	for _, tt := range tests {
		if got := formatType(tt.formats); got != tt.want {
			t.Errorf("formatType(%v) = %q, want %q", tt.formats, got, tt.want)
		}
	}
}
