// Package iso2709 provides a format plugin for binary MARC 21 (ISO 2709)
// record streams.
package iso2709

import (
	"bytes"
	"context"
	"fmt"
	"io"

	bmarc "github.com/boutros/marc"

	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
	"github.com/finc/marcfacts/marc"
)

// Format implements binary MARC.
type Format struct{}

var (
	_ export.Parser     = (*Format)(nil)
	_ export.Serializer = (*Format)(nil)
)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "marc"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "MARC 21 binary records (ISO 2709)"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"mrc", "marc", "iso"}
}

// CanParse returns true if the input starts with an ISO 2709 leader.
func (f *Format) CanParse(peek []byte) bool {
	peek = bytes.TrimSpace(peek)
	if len(peek) == 0 {
		return false
	}
	return bmarc.DetectFormat(peek) == bmarc.MARC
}

// Parse reads every record of the stream.
func (f *Format) Parse(r io.Reader, opts *export.ParseOptions) ([]*marc.Record, error) {
	records, err := marc.ParseAll(r, opts.MarcOptions()...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sourceName(opts), err)
	}
	return records, nil
}

// Serialize writes the drivers' records unchanged.
func (f *Format) Serialize(_ context.Context, w io.Writer, records []*driver.Driver, _ *export.SerializeOptions) error {
	recs := make([]*marc.Record, 0, len(records))
	for _, d := range records {
		recs = append(recs, d.Record())
	}
	return marc.Encode(w, recs...)
}

func sourceName(opts *export.ParseOptions) string {
	if opts == nil || opts.SourceName == "" {
		return "input"
	}
	return opts.SourceName
}

func init() {
	export.Register(&Format{})
}
