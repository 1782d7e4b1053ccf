package csl

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/finc/marcfacts/citation"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
	"github.com/finc/marcfacts/helpers"
)

// Serialize writes records as CSL-JSON. A single record is written as an
// object, several as an array.
func (f *Format) Serialize(ctx context.Context, w io.Writer, records []*driver.Driver, opts *export.SerializeOptions) error {
	if opts == nil {
		opts = export.NewSerializeOptions()
	}

	items := make([]JSONItem, 0, len(records))
	for _, d := range records {
		items = append(items, toItem(ctx, d))
	}

	encoder := json.NewEncoder(w)
	if opts.Pretty {
		encoder.SetIndent("", "  ")
	}

	if len(items) == 1 {
		return encoder.Encode(items[0])
	}
	return encoder.Encode(items)
}

func toItem(ctx context.Context, d *driver.Driver) JSONItem {
	kind := citation.SelectKind(d)
	item := JSONItem{
		ID:       d.ID(),
		Type:     itemType(ctx, d, kind),
		Title:    d.Title(),
		Edition:  d.Edition(),
		ISBN:     d.CleanISBN(),
		ISSN:     d.CleanISSN(),
		Language: first(d.Languages()),
		URL:      first(d.URLs()),
		Abstract: first(d.Summary()),
	}
	if item.ID == "" {
		item.ID = generateID(d)
	}

	for _, a := range d.Authors() {
		name := toName(a)
		switch {
		case a.IsEditor():
			item.Editor = append(item.Editor, name)
		case roleIs(a, "trl"):
			item.Translator = append(item.Translator, name)
		case isAuthor(a):
			item.Author = append(item.Author, name)
		}
	}

	if details := d.PublicationDetails(); len(details) > 0 {
		item.Publisher = details[0].Name
		item.PublisherPlace = details[0].Place
	}
	if y, err := strconv.Atoi(d.Year()); err == nil {
		item.Issued = &JSONDate{DateParts: [][]int{{y}}}
	}

	if series := d.Series(); len(series) > 0 {
		item.CollectionTitle = series[0].Name
		item.CollectionNumber = series[0].Number
	}

	if kind == citation.Article {
		info := d.Container(ctx)
		item.ContainerTitle = info.Title
		item.Volume = info.Volume
		item.Issue = info.Issue
		item.Page = info.Pages
		if item.ISSN == "" {
			item.ISSN = helpers.CleanISSN([]string{info.ISXN})
		}
		if y, err := strconv.Atoi(info.Year); err == nil {
			item.Issued = &JSONDate{DateParts: [][]int{{y}}}
		}
	} else if v := d.PartNumber(); v != "" {
		item.Volume = v
	}

	return item
}

// itemType maps the citation kind, and for other records the first
// simplified format, to a CSL item type.
func itemType(ctx context.Context, d *driver.Driver, kind citation.Kind) string {
	switch kind {
	case citation.Article:
		if d.IsContainerMonography(ctx) {
			return "chapter"
		}
		return "article-journal"
	case citation.Journal:
		return "periodical"
	case citation.Book:
		return "book"
	}

	return formatType(d.SimplifiedFormats())
}

func toName(a driver.Author) JSONName {
	p := a.Parsed()
	if p == nil || p.Family == "" {
		return JSONName{Literal: a.Name}
	}
	return JSONName{
		Family:   p.Family,
		Given:    p.GivenNames(),
		Particle: p.Prefix,
		Suffix:   p.Suffix,
	}
}

func isAuthor(a driver.Author) bool {
	if len(a.Roles) == 0 {
		return true
	}
	for _, r := range a.Roles {
		if helpers.IsCreatorRole(r) {
			return true
		}
	}
	return false
}

func roleIs(a driver.Author, code string) bool {
	for _, r := range a.Roles {
		if r == code {
			return true
		}
	}
	return false
}

// generateID creates an ID from the first author's family name and the
// year.
func generateID(d *driver.Driver) string {
	author := "unknown"
	if authors := d.Authors(); len(authors) > 0 {
		if p := authors[0].Parsed(); p != nil && p.Family != "" {
			author = p.Family
		} else if parts := strings.Fields(authors[0].Name); len(parts) > 0 {
			author = parts[0]
		}
	}
	year := d.Year()
	if year == "" {
		year = "nd"
	}

	author = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return r
		}
		return -1
	}, author)

	return strings.ToLower(author) + year
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// JSON types for CSL-JSON output.

type JSONItem struct {
	ID               string     `json:"id"`
	Type             string     `json:"type"`
	Title            string     `json:"title,omitempty"`
	Language         string     `json:"language,omitempty"`
	Author           []JSONName `json:"author,omitempty"`
	Editor           []JSONName `json:"editor,omitempty"`
	Translator       []JSONName `json:"translator,omitempty"`
	Issued           *JSONDate  `json:"issued,omitempty"`
	URL              string     `json:"URL,omitempty"`
	ISBN             string     `json:"ISBN,omitempty"`
	ISSN             string     `json:"ISSN,omitempty"`
	Publisher        string     `json:"publisher,omitempty"`
	PublisherPlace   string     `json:"publisher-place,omitempty"`
	ContainerTitle   string     `json:"container-title,omitempty"`
	CollectionTitle  string     `json:"collection-title,omitempty"`
	CollectionNumber string     `json:"collection-number,omitempty"`
	Edition          string     `json:"edition,omitempty"`
	Volume           string     `json:"volume,omitempty"`
	Issue            string     `json:"issue,omitempty"`
	Page             string     `json:"page,omitempty"`
	Abstract         string     `json:"abstract,omitempty"`
}

type JSONName struct {
	Family   string `json:"family,omitempty"`
	Given    string `json:"given,omitempty"`
	Particle string `json:"dropping-particle,omitempty"`
	Suffix   string `json:"suffix,omitempty"`
	Literal  string `json:"literal,omitempty"`
}

type JSONDate struct {
	DateParts [][]int `json:"date-parts,omitempty"`
}
