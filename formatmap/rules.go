package formatmap

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/marc"
)

// Table is a format rule table: the label vocabulary and the ordered rules
// that assign labels.
type Table struct {
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Labels      []string `yaml:"labels" json:"labels"`
	Rules       []Rule   `yaml:"rules" json:"rules"`
}

// Rule assigns Label when When holds. Every matching rule contributes.
type Rule struct {
	Name  string    `yaml:"name,omitempty" json:"name,omitempty"`
	Label string    `yaml:"label" json:"label"`
	When  Condition `yaml:"when" json:"when"`
}

// Condition tests one record source, or combines sub-conditions.
//
// Source is "leader", a control tag ("007", "008") or a field spec such as
// "500a" or "336b". For leader and control sources Pos and Len select the
// fixed-length positions to compare; Len defaults to 1.
type Condition struct {
	Source  string   `yaml:"source,omitempty" json:"source,omitempty"`
	Pos     int      `yaml:"pos,omitempty" json:"pos,omitempty"`
	Len     int      `yaml:"len,omitempty" json:"len,omitempty"`
	Equals  string   `yaml:"equals,omitempty" json:"equals,omitempty"`
	In      []string `yaml:"in,omitempty" json:"in,omitempty"`
	Matches string   `yaml:"matches,omitempty" json:"matches,omitempty"`
	Exists  *bool    `yaml:"exists,omitempty" json:"exists,omitempty"`

	All []Condition `yaml:"all,omitempty" json:"all,omitempty"`
	Any []Condition `yaml:"any,omitempty" json:"any,omitempty"`
	Not *Condition  `yaml:"not,omitempty" json:"not,omitempty"`

	spec       extract.Spec
	positional bool
	re         *regexp.Regexp
}

// ConfigurationError reports an invalid rule table. It is raised when the
// table is loaded, never while mapping records.
type ConfigurationError struct {
	Rule   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Rule == "" {
		return "format rules: " + e.Reason
	}
	return fmt.Sprintf("format rule %q: %s", e.Rule, e.Reason)
}

// compile validates the table and prepares every condition.
func (t *Table) compile() error {
	labels := make(map[string]bool, len(t.Labels))
	for _, l := range t.Labels {
		labels[l] = true
	}
	if len(t.Rules) == 0 {
		return &ConfigurationError{Reason: "no rules defined"}
	}

	for i := range t.Rules {
		r := &t.Rules[i]
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if r.Label == "" {
			return &ConfigurationError{Rule: name, Reason: "missing label"}
		}
		if !labels[r.Label] {
			return &ConfigurationError{Rule: name, Reason: fmt.Sprintf("label %q is not defined", r.Label)}
		}
		if err := r.When.compile(); err != nil {
			return &ConfigurationError{Rule: name, Reason: err.Error()}
		}
	}
	return nil
}

func (c *Condition) compile() error {
	for i := range c.All {
		if err := c.All[i].compile(); err != nil {
			return err
		}
	}
	for i := range c.Any {
		if err := c.Any[i].compile(); err != nil {
			return err
		}
	}
	if c.Not != nil {
		if err := c.Not.compile(); err != nil {
			return err
		}
	}
	if len(c.All) > 0 || len(c.Any) > 0 || c.Not != nil {
		if c.Source != "" {
			return fmt.Errorf("source %q cannot be combined with all/any/not", c.Source)
		}
		return nil
	}

	switch {
	case c.Source == "":
		return fmt.Errorf("condition without source")
	case c.Source == "leader" || marc.IsControlTag(c.Source):
		c.positional = true
		if c.Len == 0 {
			c.Len = 1
		}
		if c.Pos < 0 || c.Len < 0 {
			return fmt.Errorf("source %s: negative position", c.Source)
		}
	default:
		spec, err := extract.ParseSpec(c.Source)
		if err != nil {
			return fmt.Errorf("source: %w", err)
		}
		if strings.Trim(spec.Tag, "0123456789") != "" {
			return fmt.Errorf("unknown source %q", c.Source)
		}
		if c.Pos != 0 || c.Len != 0 {
			return fmt.Errorf("source %s: positions apply to leader and control fields only", c.Source)
		}
		c.spec = spec
	}

	if c.Matches != "" {
		re, err := regexp.Compile(c.Matches)
		if err != nil {
			return fmt.Errorf("compiling %q: %w", c.Matches, err)
		}
		c.re = re
	}
	if c.Equals == "" && len(c.In) == 0 && c.Matches == "" && c.Exists == nil {
		return fmt.Errorf("source %s: no test given", c.Source)
	}
	return nil
}

// Evaluate reports whether rec satisfies the condition. A source with
// several values (repeated 007, several 500 notes) matches if any does.
func (c *Condition) Evaluate(rec *marc.Record) bool {
	if len(c.All) > 0 {
		for i := range c.All {
			if !c.All[i].Evaluate(rec) {
				return false
			}
		}
		return true
	}
	if len(c.Any) > 0 {
		for i := range c.Any {
			if c.Any[i].Evaluate(rec) {
				return true
			}
		}
		return false
	}
	if c.Not != nil {
		return !c.Not.Evaluate(rec)
	}

	values := c.values(rec)
	if c.Exists != nil {
		return (len(values) > 0) == *c.Exists
	}
	for _, v := range values {
		if c.matchValue(v) {
			return true
		}
	}
	return false
}

func (c *Condition) matchValue(v string) bool {
	if c.Equals != "" && !strings.EqualFold(v, c.Equals) {
		return false
	}
	if len(c.In) > 0 {
		found := false
		for _, want := range c.In {
			if strings.EqualFold(v, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if c.re != nil && !c.re.MatchString(v) {
		return false
	}
	return true
}

func (c *Condition) values(rec *marc.Record) []string {
	if !c.positional {
		return extract.Values(rec, c.spec, false, "")
	}

	var raw []string
	if c.Source == "leader" {
		raw = []string{rec.Leader}
	} else {
		raw = rec.ControlFields(c.Source)
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		// Too short to hold the positions: treated as absent.
		if len(v) < c.Pos+c.Len {
			continue
		}
		out = append(out, v[c.Pos:c.Pos+c.Len])
	}
	return out
}
