package bibtex

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/finc/marcfacts/citation"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
	"github.com/finc/marcfacts/helpers"
)

// Entry is one BibTeX entry before rendering.
type Entry struct {
	Type      string
	Key       string
	Title     string
	Author    []driver.Author
	Editor    []driver.Author
	Year      string
	Journal   string
	Booktitle string
	Publisher string
	Address   string
	Volume    string
	Number    string
	Pages     string
	Series    string
	Edition   string
	ISBN      string
	ISSN      string
	URL       string
	Language  string
}

// Serialize writes records as BibTeX entries separated by blank lines.
func (f *Format) Serialize(ctx context.Context, w io.Writer, records []*driver.Driver, _ *export.SerializeOptions) error {
	for i, d := range records {
		if _, err := io.WriteString(w, render(toEntry(ctx, d))); err != nil {
			return err
		}
		if i < len(records)-1 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func toEntry(ctx context.Context, d *driver.Driver) *Entry {
	e := &Entry{
		Type:     "misc",
		Title:    d.Title(),
		Year:     d.Year(),
		Edition:  d.Edition(),
		ISBN:     d.CleanISBN(),
		ISSN:     d.CleanISSN(),
		Language: strings.Join(d.LanguageNames(), ", "),
	}
	if urls := d.URLs(); len(urls) > 0 {
		e.URL = urls[0]
	}

	for _, a := range d.Authors() {
		switch {
		case a.IsEditor():
			e.Editor = append(e.Editor, a)
		case len(a.Roles) == 0 || hasCreatorRole(a):
			e.Author = append(e.Author, a)
		}
	}

	if details := d.PublicationDetails(); len(details) > 0 {
		e.Publisher = details[0].Name
		e.Address = details[0].Place
	}
	if series := d.Series(); len(series) > 0 {
		e.Series = series[0].Name
		e.Number = series[0].Number
	}

	switch citation.SelectKind(d) {
	case citation.Article:
		info := d.Container(ctx)
		if d.IsContainerMonography(ctx) {
			e.Type = "incollection"
			e.Booktitle = info.Title
			if e.ISBN == "" {
				e.ISBN = helpers.CleanISBN([]string{info.ISXN})
			}
		} else {
			e.Type = "article"
			e.Journal = info.Title
			if e.ISSN == "" {
				e.ISSN = helpers.CleanISSN([]string{info.ISXN})
			}
		}
		e.Volume = info.Volume
		e.Number = info.Issue
		e.Pages = strings.ReplaceAll(info.Pages, "-", "--")
		if info.Year != "" {
			e.Year = info.Year
		}
	case citation.Journal:
		e.Type = "periodical"
	case citation.Book:
		e.Type = "book"
		if v := d.PartNumber(); v != "" {
			e.Volume = v
		}
	default:
		e.Type = entryType(d.SimplifiedFormats())
	}

	e.Key = citationKey(e, d.ID())
	return e
}

func hasCreatorRole(a driver.Author) bool {
	for _, r := range a.Roles {
		if helpers.IsCreatorRole(r) {
			return true
		}
	}
	return false
}

// citationKey creates a key from the first author's family name and the
// year, falling back to the record id.
func citationKey(e *Entry, id string) string {
	var author string
	names := e.Author
	if len(names) == 0 {
		names = e.Editor
	}
	if len(names) > 0 {
		if p := names[0].Parsed(); p != nil && p.Family != "" {
			author = p.Family
		} else if parts := strings.Fields(names[0].Name); len(parts) > 0 {
			author = parts[0]
		}
	}
	author = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, author)

	if author == "" {
		if id != "" {
			return id
		}
		author = "unknown"
	}
	year := e.Year
	if year == "" {
		year = "nd"
	}
	return strings.ToLower(author) + year
}

func render(e *Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@%s{%s,\n", e.Type, e.Key)

	field := func(name, value string, escape bool) {
		if value == "" {
			return
		}
		if escape {
			value = escapeBibtex(value)
		}
		fmt.Fprintf(&sb, "  %s = {%s},\n", name, value)
	}

	field("title", e.Title, true)
	field("author", formatPersons(e.Author), false)
	field("editor", formatPersons(e.Editor), false)
	field("year", e.Year, false)
	field("journal", e.Journal, true)
	field("booktitle", e.Booktitle, true)
	field("publisher", e.Publisher, true)
	field("address", e.Address, true)
	field("volume", e.Volume, true)
	field("number", e.Number, true)
	field("pages", e.Pages, false)
	field("series", e.Series, true)
	field("edition", e.Edition, true)
	field("isbn", e.ISBN, false)
	field("issn", e.ISSN, false)
	field("url", e.URL, false)
	field("language", e.Language, false)

	sb.WriteString("}\n")
	return sb.String()
}

// formatPersons joins names in "Family, Given" form with " and ".
// Corporate bodies are braced so BibTeX does not split them.
func formatPersons(persons []driver.Author) string {
	var names []string
	for _, a := range persons {
		if a.Corporate {
			names = append(names, "{"+escapeBibtex(a.Name)+"}")
			continue
		}
		if p := a.Parsed(); p != nil {
			names = append(names, escapeBibtex(p.Inverted()))
		}
	}
	return strings.Join(names, " and ")
}

// escapeBibtex escapes special characters for BibTeX.
func escapeBibtex(s string) string {
	s = strings.ReplaceAll(s, "&", "\\&")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "$", "\\$")
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
