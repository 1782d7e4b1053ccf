// Package network describes the library networks records originate from and
// the per-network variations in where container data lives.
package network

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/marc"
)

// DefaultCode is used when a record cannot be attributed to a network.
const DefaultCode = "finc"

// DefaultContainerTitle is the container-title chain for networks that do
// not override it.
var DefaultContainerTitle = extract.Specs("773t", "773a", "490a", "772t", "780t")

// DefaultTitleFilters are applied to container titles unless overridden.
var DefaultTitleFilters = []string{"strip_in", "punctuation"}

// Profile is one network's configuration.
type Profile struct {
	// Code is the short network key, e.g. "GBV".
	Code string `yaml:"code" json:"code"`

	Name        string `yaml:"name" json:"name"`
	ISIL        string `yaml:"isil,omitempty" json:"isil,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// LinkTemplate builds the external catalog URL; "{id}" is replaced by
	// the record's identifier in this network.
	LinkTemplate string `yaml:"link_template,omitempty" json:"link_template,omitempty"`

	Container ContainerConfig `yaml:"container,omitempty" json:"container,omitempty"`

	// ExcludeContainerIDs are patterns for 773$w values that must not be
	// used for remote container lookups.
	ExcludeContainerIDs []string `yaml:"exclude_container_ids,omitempty" json:"exclude_container_ids,omitempty"`

	// LookupPrefix is prepended to container ids in index queries.
	LookupPrefix string `yaml:"lookup_prefix,omitempty" json:"lookup_prefix,omitempty"`

	excludes []*regexp.Regexp
	filter   extract.Filter
}

// ContainerConfig overrides where container data is read from.
type ContainerConfig struct {
	Title        []extract.Spec `yaml:"title,omitempty" json:"title,omitempty"`
	TitleFilters []string       `yaml:"title_filters,omitempty" json:"title_filters,omitempty"`

	// Composite marks networks that pack issue, pages and year into a
	// single 773$g string ("H. 3, S. 45-60 (2019)").
	Composite bool `yaml:"composite,omitempty" json:"composite,omitempty"`
}

// compile validates the profile and prepares patterns and filters.
func (p *Profile) compile() error {
	if p.Code == "" {
		return fmt.Errorf("network profile without code")
	}

	p.excludes = p.excludes[:0]
	for _, pattern := range p.ExcludeContainerIDs {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("network %s: compiling exclude pattern %q: %w", p.Code, pattern, err)
		}
		p.excludes = append(p.excludes, re)
	}

	names := p.Container.TitleFilters
	if names == nil {
		names = DefaultTitleFilters
	}
	filters := make([]extract.Filter, 0, len(names))
	for _, name := range names {
		f, ok := extract.FilterByName(name)
		if !ok {
			return fmt.Errorf("network %s: unknown title filter %q", p.Code, name)
		}
		filters = append(filters, f)
	}
	p.filter = extract.Chain(filters...)

	if p.LinkTemplate != "" && !strings.Contains(p.LinkTemplate, "{id}") {
		return fmt.Errorf("network %s: link template lacks {id}", p.Code)
	}
	return nil
}

// ContainerTitleSpecs returns the override chain or the default one.
func (p *Profile) ContainerTitleSpecs() []extract.Spec {
	if len(p.Container.Title) > 0 {
		return p.Container.Title
	}
	return DefaultContainerTitle
}

// FilterContainerTitle runs the configured title filters.
func (p *Profile) FilterContainerTitle(s string) string {
	if p.filter == nil {
		return extract.Chain(extract.StripInPrefix, extract.TrimPunctuation)(s)
	}
	return p.filter(s)
}

// ExcludesContainerID reports whether a raw 773$w value is blocked.
func (p *Profile) ExcludesContainerID(id string) bool {
	for _, re := range p.excludes {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}

var isilPrefix = regexp.MustCompile(`^\(([^)]+)\)\s*(.+)$`)

// SplitControlNumber splits "(DE-627)123" into "DE-627" and "123".
func SplitControlNumber(v string) (isil, id string) {
	m := isilPrefix.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return "", strings.TrimSpace(v)
	}
	return m[1], m[2]
}

// RecordID returns the record's identifier in this network: the matching
// 035$a, the 001 when 003 names this network, else the 001.
func (p *Profile) RecordID(rec *marc.Record) string {
	if p.ISIL != "" {
		for _, f := range rec.FieldsByTag("035") {
			for _, v := range f.SubfieldValues("a") {
				if isil, id := SplitControlNumber(v); isil == p.ISIL {
					return id
				}
			}
		}
	}
	return rec.ID()
}

// Link returns the external catalog URL for rec, or "".
func (p *Profile) Link(rec *marc.Record) string {
	if p.LinkTemplate == "" {
		return ""
	}
	id := p.RecordID(rec)
	if id == "" {
		return ""
	}
	return strings.Replace(p.LinkTemplate, "{id}", url.PathEscape(id), 1)
}
