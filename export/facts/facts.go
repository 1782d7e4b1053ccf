// Package facts provides a serializer writing everything the driver
// derives from a record as one JSON document per record.
package facts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/finc/marcfacts/citation"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
)

// Format implements the facts JSON format.
type Format struct{}

var _ export.Serializer = (*Format)(nil)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "json"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "Derived record facts as JSON lines"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"jsonl", "ndjson"}
}

// CanParse always returns false; facts are an output format only.
func (f *Format) CanParse(peek []byte) bool {
	return false
}

// Serialize writes one JSON object per record and line. With
// opts.Pretty the objects are indented instead.
func (f *Format) Serialize(ctx context.Context, w io.Writer, records []*driver.Driver, opts *export.SerializeOptions) error {
	if opts == nil {
		opts = export.NewSerializeOptions()
	}
	marshal := protojson.MarshalOptions{}
	if opts.Pretty {
		marshal.Multiline = true
		marshal.Indent = "  "
	}

	for _, d := range records {
		doc, err := Struct(ctx, d)
		if err != nil {
			return fmt.Errorf("record %s: %w", d.ID(), err)
		}
		data, err := marshal.Marshal(doc)
		if err != nil {
			return fmt.Errorf("record %s: %w", d.ID(), err)
		}
		// protojson randomizes whitespace.
		if !opts.Pretty {
			var buf bytes.Buffer
			if err := json.Compact(&buf, data); err != nil {
				return fmt.Errorf("record %s: %w", d.ID(), err)
			}
			data = buf.Bytes()
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Map collects the driver facts into plain Go values.
func Map(ctx context.Context, d *driver.Driver) map[string]any {
	cls := d.Classification()
	info := d.Container(ctx)

	m := map[string]any{
		"id":                d.ID(),
		"network":           d.Network().Code,
		"network_link":      d.NetworkLink(),
		"level":             cls.Level.String(),
		"formats":           anySlice(d.Formats()),
		"simple_formats":    anySlice(d.SimplifiedFormats()),
		"title":             d.Title(),
		"short_title":       d.ShortTitle(),
		"subtitle":          d.Subtitle(),
		"title_statement":   d.TitleStatement(),
		"original_title":    d.OriginalTitle(),
		"edition":           d.Edition(),
		"isbn":              d.CleanISBN(),
		"issn":              d.CleanISSN(),
		"zdb_id":            d.ZDBID(),
		"year":              d.Year(),
		"languages":         anySlice(d.Languages()),
		"urls":              anySlice(d.URLs()),
		"summary":           anySlice(d.Summary()),
		"publishers":        anySlice(d.Publishers()),
		"places":            anySlice(d.PlacesOfPublication()),
		"container_ids":     anySlice(d.ContainerIDs()),
		"is_article":        cls.IsArticle,
		"is_serial":         cls.IsSerial,
		"is_electronic":     cls.IsElectronic,
		"container_is_book": d.IsContainerMonography(ctx),
	}

	var authors []any
	for _, a := range d.Authors() {
		authors = append(authors, map[string]any{
			"name":      a.Name,
			"roles":     anySlice(a.Roles),
			"corporate": a.Corporate,
			"primary":   a.Primary,
		})
	}
	m["authors"] = authors

	var series []any
	for _, s := range d.Series() {
		series = append(series, map[string]any{"name": s.Name, "number": s.Number})
	}
	m["series"] = series

	if !info.Empty() {
		m["container"] = map[string]any{
			"title":  info.Title,
			"volume": info.Volume,
			"issue":  info.Issue,
			"pages":  info.Pages,
			"year":   info.Year,
			"isxn":   info.ISXN,
		}
	}

	p := citation.Build(ctx, d)
	m["openurl"] = p.Encode()
	m["citation_kind"] = p.Kind.String()
	return m
}

// Struct converts Map to a protobuf Struct.
func Struct(ctx context.Context, d *driver.Driver) (*structpb.Struct, error) {
	return structpb.NewStruct(Map(ctx, d))
}

func anySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func init() {
	export.Register(&Format{})
}
