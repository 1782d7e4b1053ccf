// Package marcxml provides a format plugin for MARC-XML (MARC 21 slim)
// collections and single records.
package marcxml

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
	"github.com/finc/marcfacts/marc"
)

// Format implements MARC-XML.
type Format struct{}

var (
	_ export.Parser     = (*Format)(nil)
	_ export.Serializer = (*Format)(nil)
)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "marcxml"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "MARC 21 XML (slim schema)"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"xml", "marcxml"}
}

// CanParse returns true if the input contains a MARC-XML record element.
// Stored full records often lack the namespace, so the element name is
// enough.
func (f *Format) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 || peek[0] != '<' {
		return false
	}
	return bytes.Contains(peek, []byte("<record")) ||
		bytes.Contains(peek, []byte(":record")) ||
		bytes.Contains(peek, []byte("<collection"))
}

// Parse reads every record element of the document.
func (f *Format) Parse(r io.Reader, opts *export.ParseOptions) ([]*marc.Record, error) {
	records, err := marc.ParseAll(r, opts.MarcOptions()...)
	if err != nil {
		name := "input"
		if opts != nil && opts.SourceName != "" {
			name = opts.SourceName
		}
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return records, nil
}

// Serialize writes the drivers' records as one collection.
func (f *Format) Serialize(_ context.Context, w io.Writer, records []*driver.Driver, _ *export.SerializeOptions) error {
	recs := make([]*marc.Record, 0, len(records))
	for _, d := range records {
		recs = append(recs, d.Record())
	}
	return marc.EncodeXML(w, recs...)
}

func init() {
	export.Register(&Format{})
}
