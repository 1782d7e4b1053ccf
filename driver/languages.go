package driver

import (
	"log/slog"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/finc/marcfacts/extract"
)

var languageSpec = extract.MustParseSpec("041a")

// MARC language codes follow ISO 639-2/B; these differ from the
// terminology codes x/text understands.
var bibliographicCodes = map[string]string{
	"alb": "sqi", "arm": "hye", "baq": "eus", "bur": "mya", "chi": "zho",
	"cze": "ces", "dut": "nld", "fre": "fra", "geo": "kat", "ger": "deu",
	"gre": "ell", "ice": "isl", "mac": "mkd", "mao": "mri", "may": "msa",
	"per": "fas", "rum": "ron", "slo": "slk", "tib": "bod", "wel": "cym",
}

// Languages returns the language codes from 008/35-37 and 041 $a, without
// duplicates or fill characters.
func (d *Driver) Languages() []string {
	var candidates []string
	if v, ok := d.rec.ControlField("008"); ok && len(v) >= 38 {
		candidates = append(candidates, v[35:38])
	}
	candidates = append(candidates, extract.Values(d.rec, languageSpec, false, "")...)

	var out []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if len(c) != 3 || strings.Trim(c, "| ") == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// LanguageNames returns English names for Languages. Codes x/text does
// not know are returned as they are.
func (d *Driver) LanguageNames() []string {
	codes := d.Languages()
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, LanguageName(c))
	}
	return out
}

// LanguageName returns the English name of a MARC language code.
func LanguageName(code string) string {
	lookup := code
	if t, ok := bibliographicCodes[code]; ok {
		lookup = t
	}
	base, err := language.ParseBase(lookup)
	if err != nil {
		slog.Debug("unmappable language code", "code", code, "err", err)
		return code
	}
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return code
}
