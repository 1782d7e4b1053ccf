package search

import (
	"github.com/finc/marcfacts/container"
	"github.com/finc/marcfacts/marc"
)

// Document is a container record as stored in the index.
type Document struct {
	DocID      string   `solr:"id"`
	Titles     []string `solr:"title"`
	Formats    []string `solr:"format"`
	FullRecord string   `solr:"fullrecord"`
}

var (
	_ container.Record       = Document{}
	_ container.BookRecord   = Document{}
	_ container.TitledRecord = Document{}
)

// ID returns the index identifier.
func (d Document) ID() string {
	return d.DocID
}

// Title returns the first stored title.
func (d Document) Title() string {
	if len(d.Titles) == 0 {
		return ""
	}
	return d.Titles[0]
}

// IsBook trusts the indexed format facet and falls back to the leader of
// the stored MARC record.
func (d Document) IsBook() bool {
	for _, f := range d.Formats {
		switch f {
		case "Book", "eBook", "EBook":
			return true
		}
	}
	if d.FullRecord == "" {
		return false
	}
	rec, err := marc.Parse(d.FullRecord, marc.Lenient())
	if err != nil {
		return false
	}
	b, err := rec.LeaderByte(7)
	return err == nil && (b == 'm' || b == 'M')
}
