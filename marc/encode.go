package marc

import (
	"fmt"
	"io"

	bmarc "github.com/boutros/marc"
)

// Encode writes records to w as ISO 2709.
func Encode(w io.Writer, records ...*Record) error {
	return encode(w, bmarc.MARC, records)
}

// EncodeXML writes records to w as a MARC-XML collection.
func EncodeXML(w io.Writer, records ...*Record) error {
	return encode(w, bmarc.MARCXML, records)
}

func encode(w io.Writer, format bmarc.Format, records []*Record) error {
	enc := bmarc.NewEncoder(w, format)
	for _, rec := range records {
		if err := enc.Encode(toEncodable(rec)); err != nil {
			return fmt.Errorf("encoding record %q: %w", rec.ID(), err)
		}
	}
	enc.Flush()
	return nil
}

func toEncodable(rec *Record) *bmarc.Record {
	out := &bmarc.Record{Leader: rec.Leader}
	for _, f := range rec.Fields {
		if f.IsControl() {
			out.CtrlFields = append(out.CtrlFields, bmarc.CField{Tag: f.Tag, Value: f.Value})
			continue
		}
		df := bmarc.DField{Tag: f.Tag, Ind1: f.Ind1, Ind2: f.Ind2}
		for _, sf := range f.Subfields {
			df.SubFields = append(df.SubFields, bmarc.SubField{Code: sf.Code, Value: sf.Value})
		}
		out.DataFields = append(out.DataFields, df)
	}
	return out
}
