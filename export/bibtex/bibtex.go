// Package bibtex writes records as BibTeX entries for LaTeX bibliographies.
package bibtex

import (
	"github.com/finc/marcfacts/export"
)

// Format is the BibTeX serializer.
type Format struct{}

var _ export.Serializer = (*Format)(nil)

func (f *Format) Name() string { return "bibtex" }

func (f *Format) Description() string {
	return "BibTeX entries (@article, @incollection, @book, @periodical, @misc)"
}

func (f *Format) Extensions() []string { return []string{"bib"} }

// CanParse is false; entries cannot be turned back into MARC.
func (f *Format) CanParse(peek []byte) bool { return false }

// formatEntryTypes picks the entry type for records that are neither
// articles, journals nor books, by their first simplified format.
var formatEntryTypes = map[string]string{
	"Thesis":     "phdthesis",
	"Manuscript": "unpublished",
	"Conference": "proceedings",
}

func entryType(formats []string) string {
	if len(formats) > 0 {
		if t, ok := formatEntryTypes[formats[0]]; ok {
			return t
		}
	}
	return "misc"
}

func init() {
	export.Register(&Format{})
}
