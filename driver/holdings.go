package driver

import "strings"

// Holding is one local holdings field (924) as written by K10plus and
// the other GBV-derived catalogs.
type Holding struct {
	ID         string `json:"id,omitempty" yaml:"id,omitempty"`
	ISIL       string `json:"isil" yaml:"isil"`
	Region     string `json:"region,omitempty" yaml:"region,omitempty"`
	Lending    string `json:"lending,omitempty" yaml:"lending,omitempty"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
	CallNumber string `json:"call_number,omitempty" yaml:"call_number,omitempty"`
	URL        string `json:"url,omitempty" yaml:"url,omitempty"`
	URLLabel   string `json:"url_label,omitempty" yaml:"url_label,omitempty"`
}

// Field924 returns the holdings of the record. With filter, only holdings
// whose ISIL matches a configured holdings.isils pattern are returned; an
// empty pattern list then selects nothing.
func (d *Driver) Field924(filter bool) []Holding {
	var out []Holding
	for _, f := range d.rec.FieldsByTag("924") {
		h := Holding{
			ID:         strings.TrimSpace(f.Subfield("a")),
			ISIL:       strings.TrimSpace(f.Subfield("b")),
			Region:     strings.TrimSpace(f.Subfield("c")),
			Lending:    strings.TrimSpace(f.Subfield("d")),
			Location:   strings.TrimSpace(f.Subfield("f")),
			CallNumber: strings.TrimSpace(f.Subfield("g")),
			URL:        strings.TrimSpace(f.Subfield("k")),
			URLLabel:   strings.TrimSpace(f.Subfield("l")),
		}
		if h.ISIL == "" {
			continue
		}
		if filter && !d.cfg.MatchesISIL(h.ISIL) {
			continue
		}
		out = append(out, h)
	}
	return out
}
