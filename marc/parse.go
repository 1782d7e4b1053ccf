package marc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	bmarc "github.com/boutros/marc"
	"golang.org/x/text/encoding/htmlindex"
)

// ParseOption adjusts Parse behaviour.
type ParseOption func(*parseConfig)

type parseConfig struct {
	lenient bool
}

// Lenient keeps records whose leader is not 24 characters wide. Such records
// are common in legacy exports; accessors still bounds-check every read.
func Lenient() ParseOption {
	return func(c *parseConfig) {
		c.lenient = true
	}
}

var (
	// Legacy exports store the ISO 2709 separators as literal entities.
	entityReplacer = strings.NewReplacer("#29;", "\x1d", "#30;", "\x1e", "#31;", "\x1f")

	numericRefPattern = regexp.MustCompile(`&#(?:[0-9]+|[xX][0-9A-Fa-f]+);`)
	ampersandPattern  = regexp.MustCompile(`&(?:[A-Za-z][A-Za-z0-9]*;)?`)
	xmlRecordPattern  = regexp.MustCompile(`(?s)<(?:[A-Za-z0-9_.-]+:)?record(?:\s[^>]*)?>.*?</(?:[A-Za-z0-9_.-]+:)?record\s*>`)

	leadingSpace = " \t\r\n\ufeff"
)

type xmlRecord struct {
	Leader        string            `xml:"leader"`
	ControlFields []xmlControlField `xml:"controlfield"`
	DataFields    []xmlDataField    `xml:"datafield"`
}

type xmlControlField struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

type xmlDataField struct {
	Tag       string        `xml:"tag,attr"`
	Ind1      string        `xml:"ind1,attr"`
	Ind2      string        `xml:"ind2,attr"`
	Subfields []xmlSubfield `xml:"subfield"`
}

type xmlSubfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// Parse decodes a single record from MARC-XML or ISO 2709. XML input that
// fails to decode is repaired once (numeric character references removed,
// bare ampersands escaped) before giving up.
func Parse(raw string, opts ...ParseOption) (*Record, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	trimmed := strings.TrimLeft(raw, leadingSpace)
	if trimmed == "" {
		return nil, &UnparsableRecordError{Format: "marc", Err: errors.New("empty input")}
	}

	var (
		rec *Record
		err error
	)
	if trimmed[0] == '<' {
		rec, err = parseXMLWithRepair(trimmed)
	} else {
		rec, err = parseBinary(trimmed)
	}
	if err != nil {
		return nil, err
	}

	if len(rec.Leader) != LeaderLength {
		if !cfg.lenient {
			return nil, &MalformedRecordError{
				Tag:    "LDR",
				Len:    len(rec.Leader),
				Reason: fmt.Sprintf("has length %d, want %d", len(rec.Leader), LeaderLength),
			}
		}
		slog.Debug("keeping record with malformed leader", "id", rec.ID(), "leader_length", len(rec.Leader))
	}

	return rec, nil
}

func parseXMLWithRepair(raw string) (*Record, error) {
	rec, err := parseXML(raw, false)
	if err == nil {
		return rec, nil
	}
	slog.Debug("retrying MARC-XML after repair", "err", err)

	rec, retryErr := parseXML(repairXML(raw), true)
	if retryErr != nil {
		return nil, &UnparsableRecordError{Format: "marcxml", Err: errors.Join(err, retryErr)}
	}
	return rec, nil
}

// repairXML removes numeric character references and escapes ampersands
// that do not start a named entity.
func repairXML(s string) string {
	s = numericRefPattern.ReplaceAllString(s, "")
	return ampersandPattern.ReplaceAllStringFunc(s, func(m string) string {
		if m == "&" {
			return "&amp;"
		}
		return m
	})
}

func parseXML(raw string, htmlEntities bool) (*Record, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))
	dec.CharsetReader = charsetReader
	if htmlEntities {
		dec.Entity = xml.HTMLEntity
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return nil, errors.New("no record element found")
			}
			return nil, fmt.Errorf("decoding MARC-XML: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "record" {
			continue
		}

		var xr xmlRecord
		if err := dec.DecodeElement(&xr, &se); err != nil {
			return nil, fmt.Errorf("decoding MARC-XML record: %w", err)
		}
		return xr.toRecord(), nil
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

func (xr xmlRecord) toRecord() *Record {
	rec := &Record{Leader: strings.Trim(xr.Leader, "\r\n\t")}
	for _, cf := range xr.ControlFields {
		rec.Fields = append(rec.Fields, Field{Tag: cf.Tag, Value: cf.Value})
	}
	for _, df := range xr.DataFields {
		f := Field{Tag: df.Tag, Ind1: df.Ind1, Ind2: df.Ind2}
		for _, sf := range df.Subfields {
			f.Subfields = append(f.Subfields, Subfield{Code: sf.Code, Value: sf.Value})
		}
		rec.Fields = append(rec.Fields, f)
	}
	return rec
}

func parseBinary(raw string) (*Record, error) {
	dec := bmarc.NewDecoder(strings.NewReader(entityReplacer.Replace(raw)), bmarc.MARC)
	r, err := dec.Decode()
	if err != nil {
		if err == io.EOF {
			err = errors.New("no record found")
		}
		return nil, &UnparsableRecordError{Format: "iso2709", Err: err}
	}

	rec := &Record{Leader: r.Leader}
	for _, cf := range r.CtrlFields {
		rec.Fields = append(rec.Fields, Field{Tag: cf.Tag, Value: cf.Value})
	}
	for _, df := range r.DataFields {
		f := Field{Tag: df.Tag, Ind1: df.Ind1, Ind2: df.Ind2}
		for _, sf := range df.SubFields {
			f.Subfields = append(f.Subfields, Subfield{Code: sf.Code, Value: sf.Value})
		}
		rec.Fields = append(rec.Fields, f)
	}
	return rec, nil
}

// Split cuts a stream of records into raw per-record chunks suitable for
// Parse. XML streams are split on record elements, ISO 2709 streams on the
// record terminator.
func Split(data []byte) []string {
	trimmed := bytes.TrimLeft(data, leadingSpace)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '<' {
		return xmlRecordPattern.FindAllString(string(trimmed), -1)
	}

	var out []string
	for _, part := range strings.SplitAfter(entityReplacer.Replace(string(trimmed)), "\x1d") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = append(out, strings.TrimLeft(part, leadingSpace))
	}
	return out
}

// ParseAll reads every record from r. The first failing record aborts.
func ParseAll(r io.Reader, opts ...ParseOption) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	chunks := Split(data)
	records := make([]*Record, 0, len(chunks))
	for i, chunk := range chunks {
		rec, err := Parse(chunk, opts...)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
