package driver

import (
	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/helpers"
	"github.com/finc/marcfacts/marc"
)

// Author is a person or body responsible for the work.
type Author struct {
	Name      string   `json:"name" yaml:"name"`
	Roles     []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Corporate bool     `json:"corporate,omitempty" yaml:"corporate,omitempty"`
	Primary   bool     `json:"primary,omitempty" yaml:"primary,omitempty"`
}

// Parsed splits a personal name; it is nil for corporate bodies.
func (a Author) Parsed() *helpers.ParsedName {
	if a.Corporate {
		return nil
	}
	return helpers.ParseName(a.Name)
}

// IsEditor reports whether every role of the author is an editor role.
func (a Author) IsEditor() bool {
	if len(a.Roles) == 0 {
		return false
	}
	for _, r := range a.Roles {
		if !helpers.IsEditorRole(r) {
			return false
		}
	}
	return true
}

// PrimaryAuthors returns 100 $a.
func (d *Driver) PrimaryAuthors() []string { return names(d.authors("100", false, true)) }

// SecondaryAuthors returns 700 $a.
func (d *Driver) SecondaryAuthors() []string { return names(d.authors("700", false, false)) }

// CorporateAuthors returns 110 $a $b and 710 $a $b.
func (d *Driver) CorporateAuthors() []string {
	return names(append(d.authors("110", true, true), d.authors("710", true, false)...))
}

// FirstAuthor returns the first primary, secondary or corporate author.
func (d *Driver) FirstAuthor() string {
	for _, group := range [][]string{d.PrimaryAuthors(), d.SecondaryAuthors(), d.CorporateAuthors()} {
		if len(group) > 0 {
			return group[0]
		}
	}
	return ""
}

// Authors returns all responsible persons and bodies with relator codes
// from $4, else normalized $e terms.
func (d *Driver) Authors() []Author {
	var out []Author
	out = append(out, d.authors("100", false, true)...)
	out = append(out, d.authors("110", true, true)...)
	out = append(out, d.authors("700", false, false)...)
	out = append(out, d.authors("710", true, false)...)
	return out
}

// AuthorRoles maps each author name to its relator codes.
func (d *Driver) AuthorRoles() map[string][]string {
	roles := make(map[string][]string)
	for _, a := range d.Authors() {
		roles[a.Name] = append(roles[a.Name], a.Roles...)
	}
	return roles
}

func (d *Driver) authors(tag string, corporate, primary bool) []Author {
	codes := []string{"a"}
	if corporate {
		codes = []string{"a", "b"}
	}
	var out []Author
	for _, f := range d.rec.FieldsByTag(tag) {
		values := extract.ExtractSubfields(f, codes, true, extract.DefaultSeparator)
		if len(values) == 0 {
			continue
		}
		name := extract.TrimPunctuation(values[0])
		if name == "" {
			continue
		}
		out = append(out, Author{
			Name:      name,
			Roles:     roles(f),
			Corporate: corporate,
			Primary:   primary,
		})
	}
	return out
}

func roles(f marc.Field) []string {
	var out []string
	seen := make(map[string]bool)
	terms := f.SubfieldValues("4")
	if len(terms) == 0 {
		terms = f.SubfieldValues("e")
	}
	for _, t := range terms {
		code := helpers.NormalizeRole(t)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func names(authors []Author) []string {
	var out []string
	for _, a := range authors {
		out = append(out, a.Name)
	}
	return out
}
