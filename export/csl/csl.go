// Package csl writes records as CSL-JSON items, the input format of
// citeproc processors and reference managers such as Zotero.
package csl

import (
	"github.com/finc/marcfacts/export"
)

// Format is the CSL-JSON serializer.
type Format struct{}

var _ export.Serializer = (*Format)(nil)

func (f *Format) Name() string { return "csl" }

func (f *Format) Description() string {
	return "CSL-JSON items (article-journal, chapter, book, periodical, ...)"
}

func (f *Format) Extensions() []string { return []string{"csl", "csljson"} }

// CanParse is false; items cannot be turned back into MARC.
func (f *Format) CanParse(peek []byte) bool { return false }

// formatTypes maps the first simplified format of a record the citation
// builder cannot classify to a CSL item type.
var formatTypes = map[string]string{
	"Map":            "map",
	"Atlas":          "map",
	"Globe":          "map",
	"Thesis":         "thesis",
	"Manuscript":     "manuscript",
	"MusicRecording": "song",
	"SoundRecording": "song",
	"SoundDisc":      "song",
	"SoundCassette":  "song",
	"Video":          "motion_picture",
	"VideoDisc":      "motion_picture",
	"VideoCassette":  "motion_picture",
	"VideoReel":      "motion_picture",
	"MotionPicture":  "motion_picture",
	"Photo":          "graphic",
	"Drawing":        "graphic",
	"Painting":       "graphic",
	"Print":          "graphic",
	"Slide":          "graphic",
	"Website":        "webpage",
	"Database":       "dataset",
	"Conference":     "paper-conference",
	"MusicalScore":   "musical_score",
}

// formatType returns the CSL type for a simplified format label,
// "document" when there is none.
func formatType(formats []string) string {
	if len(formats) == 0 {
		return "document"
	}
	if t, ok := formatTypes[formats[0]]; ok {
		return t
	}
	return "document"
}

func init() {
	export.Register(&Format{})
}
