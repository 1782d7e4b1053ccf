// Package helpers holds identifier, relator and name utilities shared by
// the driver and the export serializers.
package helpers

import "strings"

// MARCRelators maps MARC relator codes to English labels. This is the
// subset that shows up in $4 of German union catalog records.
var MARCRelators = map[string]string{
	// Primary creators
	"aut": "Author",
	"cre": "Creator",
	"edt": "Editor",
	"com": "Compiler",
	"trl": "Translator",
	"ill": "Illustrator",
	"pht": "Photographer",
	"art": "Artist",
	"cmp": "Composer",
	"lyr": "Lyricist",
	"ctg": "Cartographer",

	// Contributors
	"ctb": "Contributor",
	"aui": "Author of introduction",
	"aft": "Author of afterword",
	"ann": "Annotator",
	"cmm": "Commentator",
	"wpr": "Writer of preface",
	"wam": "Writer of accompanying material",
	"red": "Redactor",

	// Thesis-related
	"ths": "Thesis advisor",
	"dgs": "Degree supervisor",
	"dgg": "Degree granting institution",
	"opn": "Opponent",

	// Publishing
	"pbl": "Publisher",
	"dst": "Distributor",
	"prt": "Printer",
	"fmo": "Former owner",

	// Performance
	"prf": "Performer",
	"act": "Actor",
	"nrt": "Narrator",
	"sng": "Singer",
	"cnd": "Conductor",
	"drt": "Director",
	"pro": "Producer",

	// Organization
	"isb": "Issuing body",
	"hst": "Host",
	"orm": "Organizer",
	"oth": "Other",
}

// roleTerms maps free-text relator terms from $e, English and German
// (RDA and pre-RDA abbreviations), to codes.
var roleTerms = map[string]string{
	// English
	"author":         "aut",
	"editor":         "edt",
	"ed.":            "edt",
	"translator":     "trl",
	"illustrator":    "ill",
	"compiler":       "com",
	"contributor":    "ctb",
	"composer":       "cmp",
	"thesis advisor": "ths",

	// German
	"verfasser":        "aut",
	"verfasserin":      "aut",
	"verf.":            "aut",
	"herausgeber":      "edt",
	"herausgeberin":    "edt",
	"hrsg.":            "edt",
	"hg.":              "edt",
	"übersetzer":       "trl",
	"übersetzerin":     "trl",
	"übers.":           "trl",
	"illustratorin":    "ill",
	"ill.":             "ill",
	"zusammenstellung": "com",
	"mitwirkender":     "ctb",
	"mitwirkende":      "ctb",
	"komponist":        "cmp",
	"komponistin":      "cmp",
	"fotograf":         "pht",
	"fotografin":       "pht",
	"kartograf":        "ctg",
	"kartografin":      "ctg",
	"redakteur":        "red",
	"redakteurin":      "red",
	"veranstalter":     "orm",

	// RDA terms from the GND relator list
	"akademischer betreuer":                     "dgs",
	"akademische betreuerin":                    "dgs",
	"herausgebendes organ":                      "isb",
	"grad-verleihende institution":              "dgg",
	"sonstige person, familie und körperschaft": "oth",
}

// RelatorCodeFromURI extracts the relator code from "relators:cre" or
// "http://id.loc.gov/vocabulary/relators/aut".
func RelatorCodeFromURI(uri string) string {
	if strings.HasPrefix(uri, "relators:") {
		return strings.TrimPrefix(uri, "relators:")
	}
	if _, code, ok := strings.Cut(uri, "relators/"); ok {
		return strings.TrimSuffix(code, "/")
	}
	return uri
}

// RelatorLabel returns the label for a relator code, or the input itself
// when the code is unknown.
func RelatorLabel(codeOrURI string) string {
	code := strings.ToLower(RelatorCodeFromURI(codeOrURI))
	if label, ok := MARCRelators[code]; ok {
		return label
	}
	return codeOrURI
}

// NormalizeRole maps a MARC code, URI, label or $e term to a relator code.
// Unrecognized roles are returned trimmed but otherwise unchanged.
func NormalizeRole(role string) string {
	role = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(role), ",;"))
	if role == "" {
		return ""
	}

	code := strings.ToLower(RelatorCodeFromURI(role))
	if _, ok := MARCRelators[code]; ok {
		return code
	}

	lower := strings.ToLower(role)
	if c, ok := roleTerms[lower]; ok {
		return c
	}
	// $e terms often carry ISBD end punctuation.
	if c, ok := roleTerms[strings.TrimSuffix(lower, ".")]; ok {
		return c
	}
	for c, label := range MARCRelators {
		if strings.EqualFold(label, role) {
			return c
		}
	}
	return role
}

// IsEditorRole reports whether role names an editor or compiler, which CSL
// and BibTeX list apart from authors.
func IsEditorRole(role string) bool {
	switch NormalizeRole(role) {
	case "edt", "com", "red":
		return true
	}
	return false
}

// IsCreatorRole returns true if the role is a primary creator role. An
// empty role counts: 100 fields without relators name the main author.
func IsCreatorRole(role string) bool {
	if strings.TrimSpace(role) == "" {
		return true
	}
	switch NormalizeRole(role) {
	case "aut", "cre", "edt", "com", "trl", "ill", "pht", "art", "cmp", "ctg":
		return true
	}
	return false
}
