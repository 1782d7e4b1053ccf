// Package classify derives bibliographic level and carrier predicates from
// the leader and fixed-length control fields of a MARC record.
package classify

import (
	"log/slog"
	"strings"

	"github.com/finc/marcfacts/extract"
	"github.com/finc/marcfacts/marc"
)

// Level is the bibliographic level encoded in leader position 7, refined
// by position 19 for monographs.
type Level int

const (
	LevelUnknown Level = iota
	LevelMonograph
	LevelSerial
	LevelSerialPart
	LevelMonographPart
	LevelCollection
	LevelSubunit
	LevelIntegrated
)

var levelNames = map[Level]string{
	LevelUnknown:       "Unknown",
	LevelMonograph:     "Monograph",
	LevelSerial:        "Serial",
	LevelSerialPart:    "SerialPart",
	LevelMonographPart: "MonographPart",
	LevelCollection:    "Collection",
	LevelSubunit:       "Subunit",
	LevelIntegrated:    "Integrated",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "Unknown"
}

// MarshalText renders the level by name.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Classification is the full set of predicates for one record. Known is
// false when the leader could not be read.
type Classification struct {
	Level               Level `json:"level" yaml:"level"`
	Known               bool  `json:"known" yaml:"known"`
	IsCollection        bool  `json:"is_collection" yaml:"is_collection"`
	IsPart              bool  `json:"is_part" yaml:"is_part"`
	IsArticle           bool  `json:"is_article" yaml:"is_article"`
	IsSerial            bool  `json:"is_serial" yaml:"is_serial"`
	IsJournal           bool  `json:"is_journal" yaml:"is_journal"`
	IsNewspaper         bool  `json:"is_newspaper" yaml:"is_newspaper"`
	IsMonographicSerial bool  `json:"is_monographic_serial" yaml:"is_monographic_serial"`
	IsElectronic        bool  `json:"is_electronic" yaml:"is_electronic"`
	IsEBook             bool  `json:"is_ebook" yaml:"is_ebook"`
	IsPhysicalBook      bool  `json:"is_physical_book" yaml:"is_physical_book"`
}

// IsContainerPart reports whether the record is published inside a host
// item: articles and dependent parts of multipart monographs.
func (c Classification) IsContainerPart() bool {
	return c.IsArticle || c.IsPart
}

var rdaCarrierSpec = extract.MustParseSpec("338b")

// Classify computes every predicate. It reads only the record and never
// fails: unreadable positions leave the affected predicates false.
func Classify(rec *marc.Record) Classification {
	var c Classification

	pos7, err := rec.LeaderByte(7)
	if err != nil {
		slog.Debug("classifying record without bibliographic level", "id", rec.ID(), "err", err)
	} else {
		c.Known = true
		pos7 = upper(pos7)
	}
	// Position 19 is optional for the level; a short leader only disables
	// the multipart distinctions.
	pos19, err19 := rec.LeaderByte(19)
	if err19 == nil {
		pos19 = upper(pos19)
	}

	if c.Known {
		c.IsCollection = pos7 == 'M' && err19 == nil && pos19 == 'A'
		c.IsPart = pos7 == 'M' && err19 == nil && pos19 == 'C'
		c.IsArticle = pos7 == 'A' || pos7 == 'B'
		c.IsSerial = pos7 == 'S'
		c.Level = level(pos7, pos19, err19 == nil)
	}

	if c.IsSerial {
		if b, err := rec.ControlByte("008", 21); err == nil {
			switch b {
			case 'p':
				c.IsJournal = true
			case 'n':
				c.IsNewspaper = true
			case 'm':
				c.IsMonographicSerial = true
			}
		}
	}

	f007 := rec.ControlFields("007")
	c.IsElectronic = isElectronic(rec, f007)
	if c.Known && pos7 == 'M' {
		for _, v := range f007 {
			lv := strings.ToLower(v)
			if strings.HasPrefix(lv, "cr") {
				c.IsEBook = true
			}
			if strings.HasPrefix(lv, "t") {
				c.IsPhysicalBook = true
			}
		}
	}

	return c
}

func isElectronic(rec *marc.Record, f007 []string) bool {
	for _, v := range f007 {
		if strings.HasPrefix(strings.ToLower(v), "c") {
			return true
		}
	}
	if b, err := rec.ControlByte("008", 23); err == nil && b == 'o' {
		return true
	}
	for _, v := range extract.Values(rec, rdaCarrierSpec, false, "") {
		if v == "cr" {
			return true
		}
	}
	return false
}

func level(pos7, pos19 byte, has19 bool) Level {
	switch pos7 {
	case 'A':
		return LevelMonographPart
	case 'B':
		return LevelSerialPart
	case 'C':
		return LevelCollection
	case 'D':
		return LevelSubunit
	case 'I':
		return LevelIntegrated
	case 'S':
		return LevelSerial
	case 'M':
		if has19 {
			switch pos19 {
			case 'A':
				return LevelCollection
			case 'B', 'C':
				return LevelMonographPart
			}
		}
		return LevelMonograph
	default:
		return LevelUnknown
	}
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
