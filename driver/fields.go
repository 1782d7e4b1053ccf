package driver

import (
	"strings"

	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/helpers"
	"github.com/finc/marcfacts/marc"
)

var (
	titleSpec          = extract.MustParseSpec("245abnp")
	shortTitleSpec     = extract.MustParseSpec("245a")
	subtitleSpec       = extract.MustParseSpec("245b")
	titleStatementSpec = extract.MustParseSpec("245c")
	partNumberSpec     = extract.MustParseSpec("245n")
	editionSpec        = extract.MustParseSpec("250a")
	isbnSpecs          = extract.Specs("020a", "0209")
	issnSpec           = extract.MustParseSpec("022a")
	urlSpec            = extract.MustParseSpec("856u")
	summarySpec        = extract.MustParseSpec("520a")
)

// PublicationDetail is one publication statement.
type PublicationDetail struct {
	Place string `json:"place,omitempty" yaml:"place,omitempty"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Date  string `json:"date,omitempty" yaml:"date,omitempty"`
}

// Series is a series statement with its numbering.
type Series struct {
	Name   string `json:"name" yaml:"name"`
	Number string `json:"number,omitempty" yaml:"number,omitempty"`
}

func first(rec *marc.Record, s extract.Spec) string {
	return extract.TrimPunctuation(extract.First(rec, s))
}

// Title returns 245 $a $b $n $p without trailing ISBD punctuation.
func (d *Driver) Title() string { return first(d.rec, titleSpec) }

// ShortTitle returns 245 $a.
func (d *Driver) ShortTitle() string { return first(d.rec, shortTitleSpec) }

// Subtitle returns 245 $b.
func (d *Driver) Subtitle() string { return first(d.rec, subtitleSpec) }

// TitleStatement returns the statement of responsibility, 245 $c.
func (d *Driver) TitleStatement() string { return first(d.rec, titleStatementSpec) }

// PartNumber returns the number of part, 245 $n.
func (d *Driver) PartNumber() string { return first(d.rec, partNumberSpec) }

// OriginalTitle returns the 245 in original script: the 880 whose $6
// links back to 245.
func (d *Driver) OriginalTitle() string {
	for _, f := range d.rec.FieldsByTag("880") {
		if !strings.HasPrefix(f.Subfield("6"), "245") {
			continue
		}
		values := extract.ExtractSubfields(f, []string{"a", "b"}, true, extract.DefaultSeparator)
		if len(values) > 0 {
			return extract.TrimPunctuation(values[0])
		}
	}
	return ""
}

// Edition returns 250 $a.
func (d *Driver) Edition() string { return first(d.rec, editionSpec) }

// ISBNs returns every 020 $a and $9 as catalogued.
func (d *Driver) ISBNs() []string {
	var out []string
	for _, s := range isbnSpecs {
		out = append(out, extract.Values(d.rec, s, false, "")...)
	}
	return out
}

// CleanISBN returns the first valid ISBN-10, else the first valid ISBN-13,
// normalized.
func (d *Driver) CleanISBN() string { return helpers.CleanISBN(d.ISBNs()) }

// ISSNs returns every 022 $a.
func (d *Driver) ISSNs() []string { return extract.Values(d.rec, issnSpec, false, "") }

// CleanISSN returns the first valid ISSN, hyphenated.
func (d *Driver) CleanISSN() string { return helpers.CleanISSN(d.ISSNs()) }

// URLs returns the 856 $u links.
func (d *Driver) URLs() []string { return extract.Values(d.rec, urlSpec, false, "") }

// Summary returns the 520 $a abstracts as plain text. Markup some vendors
// deliver in these notes is removed.
func (d *Driver) Summary() []string {
	var out []string
	for _, v := range extract.Values(d.rec, summarySpec, false, "") {
		if v = helpers.CleanText(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ZDBID returns the German Union Catalogue of Serials id: 016 $a with
// $2 DE-600, else an 035 "(DE-599)ZDB..." number.
func (d *Driver) ZDBID() string {
	for _, f := range d.rec.FieldsByTag("016") {
		if f.Subfield("2") == "DE-600" {
			if id := strings.TrimSpace(f.Subfield("a")); id != "" {
				return id
			}
		}
	}
	for _, f := range d.rec.FieldsByTag("035") {
		for _, v := range f.SubfieldValues("a") {
			if id, ok := strings.CutPrefix(strings.TrimSpace(v), "(DE-599)ZDB"); ok && id != "" {
				return id
			}
		}
	}
	return ""
}

// PublicationDetails returns 260 and 264 (publication, ind2 1) statements
// in record order.
func (d *Driver) PublicationDetails() []PublicationDetail {
	var out []PublicationDetail
	for _, f := range d.rec.DataFields("260", "264") {
		if f.Tag == "264" && f.Ind2 != "1" {
			continue
		}
		pd := PublicationDetail{
			Place: extract.TrimPunctuation(strings.Trim(f.Subfield("a"), " []")),
			Name:  extract.TrimPunctuation(f.Subfield("b")),
			Date:  extract.TrimPunctuation(f.Subfield("c")),
		}
		if pd != (PublicationDetail{}) {
			out = append(out, pd)
		}
	}
	return out
}

// PublicationDates returns the dates of PublicationDetails.
func (d *Driver) PublicationDates() []string {
	return collect(d.PublicationDetails(), func(p PublicationDetail) string { return p.Date })
}

// Publishers returns the publisher names of PublicationDetails.
func (d *Driver) Publishers() []string {
	return collect(d.PublicationDetails(), func(p PublicationDetail) string { return p.Name })
}

// PlacesOfPublication returns the places of PublicationDetails.
func (d *Driver) PlacesOfPublication() []string {
	return collect(d.PublicationDetails(), func(p PublicationDetail) string { return p.Place })
}

// Year returns the four-digit year of the first publication date, or the
// 008 date 1.
func (d *Driver) Year() string {
	for _, date := range d.PublicationDates() {
		if y := extract.ExtractYear(date); y != "" {
			return y
		}
	}
	if v, ok := d.rec.ControlField("008"); ok && len(v) >= 11 {
		return extract.ExtractYear(v[7:11])
	}
	return ""
}

// Series returns 490 $a/$v statements, then 830 $a/$v, dropping exact
// repeats.
func (d *Driver) Series() []Series {
	var out []Series
	seen := make(map[Series]bool)
	for _, tag := range []string{"490", "830"} {
		for _, f := range d.rec.FieldsByTag(tag) {
			name := extract.TrimPunctuation(strings.Join(extract.ExtractSubfields(f, []string{"a"}, false, ""), " "))
			if name == "" {
				continue
			}
			s := Series{Name: name, Number: extract.TrimPunctuation(f.Subfield("v"))}
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func collect(details []PublicationDetail, get func(PublicationDetail) string) []string {
	var out []string
	for _, p := range details {
		if v := get(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
