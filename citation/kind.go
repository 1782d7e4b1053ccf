package citation

import (
	"slices"

	"github.com/finc/marcfacts/formatmap"
)

// Kind selects the parameter set Build writes.
type Kind int

const (
	Unknown Kind = iota
	Book
	Article
	Journal
)

func (k Kind) String() string {
	switch k {
	case Book:
		return "book"
	case Article:
		return "article"
	case Journal:
		return "journal"
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SelectKind picks the citation kind: articles first, then serials, then
// ebooks and anything simplified to Book. Every other record is Unknown
// and is described by its first simplified format.
func SelectKind(src Source) Kind {
	cls := src.Classification()
	switch {
	case cls.IsArticle:
		return Article
	case cls.IsSerial:
		return Journal
	case cls.IsEBook, slices.Contains(src.SimplifiedFormats(), formatmap.LabelBook):
		return Book
	}
	return Unknown
}
