package export_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
	_ "github.com/finc/marcfacts/export/bibtex"
	_ "github.com/finc/marcfacts/export/csl"
	_ "github.com/finc/marcfacts/export/facts"
	_ "github.com/finc/marcfacts/export/iso2709"
	_ "github.com/finc/marcfacts/export/marcxml"
	_ "github.com/finc/marcfacts/export/openurl"
	"github.com/finc/marcfacts/marc"
)

func book() *marc.Record {
	return marc.NewRecord("00000cam a2200000 c 4500").
		AddControlField("001", "1012345678").
		AddControlField("003", "DE-627").
		AddControlField("008", "180312s2018    gw |||||||||||||||||ger c").
		AddDataField("100", "1", " ", "a", "Müller, Hans-Peter").
		AddDataField("245", "1", "0", "a", "Geschichte der Bibliotheken").
		AddDataField("264", " ", "1", "a", "Berlin", "b", "De Gruyter", "c", "2018")
}

func drivers(t *testing.T, recs ...*marc.Record) []*driver.Driver {
	t.Helper()
	out := make([]*driver.Driver, 0, len(recs))
	for _, rec := range recs {
		d, err := driver.New(rec)
		if err != nil {
			t.Fatalf("driver.New: %v", err)
		}
		out = append(out, d)
	}
	return out
}

func TestRegistryList(t *testing.T) {
	got := strings.Join(export.DefaultRegistry.List(), ",")
	want := "bibtex,csl,json,marc,marcxml,openurl"
	if got != want {
		t.Errorf("List() = %s, want %s", got, want)
	}

	if _, err := export.GetParser("csl"); err == nil {
		t.Error("csl should not be a parser")
	}
	if _, err := export.GetSerializer("nope"); err == nil {
		t.Error("unknown format should fail")
	}
	if _, ok := export.Get("MARCXML"); !ok {
		t.Error("lookup should ignore case")
	}
}

func TestDetectParser(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		peek     string
		want     string
	}{
		{"binary by extension", "dump.mrc", "", "marc"},
		{"xml by extension", "dump.xml", "", "marcxml"},
		{"xml by content", "-", `<?xml version="1.0"?><collection><record>`, "marcxml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := export.DetectParser(tt.filename, []byte(tt.peek))
			if err != nil {
				t.Fatalf("DetectParser: %v", err)
			}
			if p.Name() != tt.want {
				t.Errorf("got %s, want %s", p.Name(), tt.want)
			}
		})
	}

	if _, err := export.DetectParser("notes.txt", []byte("hello")); err == nil {
		t.Error("expected detection failure")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	s, err := export.GetSerializer("marc")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.Serialize(context.Background(), &buf, drivers(t, book(), book()), nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	p, err := export.GetParser("marc")
	if err != nil {
		t.Fatal(err)
	}
	recs, err := p.Parse(&buf, &export.ParseOptions{SourceName: "roundtrip"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[1].ID() != "1012345678" {
		t.Errorf("ID() = %q", recs[1].ID())
	}
}

func TestMarcXMLSerialize(t *testing.T) {
	s, err := export.GetSerializer("marcxml")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := s.Serialize(context.Background(), &buf, drivers(t, book()), nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	for _, want := range []string{"record", "1012345678", "Geschichte der Bibliotheken"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output lacks %q:\n%s", want, buf.String())
		}
	}
}

func TestOpenURLSerialize(t *testing.T) {
	s, err := export.GetSerializer("openurl")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	opts := &export.SerializeOptions{Resolver: "https://resolver.example/openurl"}
	if err := s.Serialize(context.Background(), &buf, drivers(t, book(), book()), opts); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "https://resolver.example/openurl?") {
		t.Errorf("line = %s", lines[0])
	}
	if !strings.Contains(lines[0], "rft.genre=book") || !strings.Contains(lines[0], "rft.btitle=Geschichte+der+Bibliotheken") {
		t.Errorf("line = %s", lines[0])
	}
}
