// Package formatmap maps MARC fixed fields, notes and RDA content codes to
// display format labels.
package formatmap

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/finc/marcfacts/classify"
	"github.com/finc/marcfacts/marc"
)

const (
	LabelBook        = "Book"
	LabelArticle     = "Article"
	LabelEBook       = "EBook"
	LabelOnline      = "Online"
	LabelCompilation = "Compilation"
)

//go:embed rules/default.yaml
var defaultRules []byte

var defaultMapper = sync.OnceValues(func() (*Mapper, error) {
	return Load(defaultRules)
})

// Mapper assigns format labels from a compiled rule table.
type Mapper struct {
	table *Table
}

// Default returns the mapper for the embedded rule table.
func Default() (*Mapper, error) {
	return defaultMapper()
}

// Load compiles a YAML rule table. Invalid tables yield a
// *ConfigurationError.
func Load(data []byte) (*Mapper, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("parsing rules YAML: %v", err)}
	}
	if err := t.compile(); err != nil {
		return nil, err
	}
	return &Mapper{table: &t}, nil
}

// LoadFile loads a rule table from disk.
func LoadFile(path string) (*Mapper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return Load(data)
}

// Table exposes the compiled rules for display.
func (m *Mapper) Table() *Table {
	return m.table
}

// Formats returns the labels of every matching rule in rule order, without
// duplicates, plus Compilation for non-article collections.
func (m *Mapper) Formats(rec *marc.Record, cls classify.Classification) []string {
	var set orderedSet
	for i := range m.table.Rules {
		r := &m.table.Rules[i]
		if r.When.Evaluate(rec) {
			set.add(r.Label)
		}
	}
	if cls.IsCollection && !cls.IsArticle {
		set.add(LabelCompilation)
	}
	return set.items
}

// Simplify appends Online for electronic resources and collapses any list
// holding both Online and Book to exactly EBook.
func Simplify(formats []string, electronic bool) []string {
	var set orderedSet
	for _, f := range formats {
		set.add(f)
	}
	if electronic {
		set.add(LabelOnline)
	}
	if set.has(LabelOnline) && set.has(LabelBook) {
		return []string{LabelEBook}
	}
	return set.items
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

func (s *orderedSet) has(v string) bool {
	return s.seen[v]
}
