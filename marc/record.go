// Package marc provides a read-only view over MARC21 bibliographic records
// decoded from ISO 2709 or MARC-XML.
package marc

import (
	"strings"
)

// LeaderLength is the width of a well-formed MARC21 leader.
const LeaderLength = 24

// Record is a decoded MARC record. Records are treated as immutable once
// parsed; accessors return fresh slices.
type Record struct {
	Leader string
	Fields []Field
}

// Field is either a control field (tag 001-009, Value set) or a data field
// (indicators and subfields set).
type Field struct {
	Tag       string
	Ind1      string
	Ind2      string
	Value     string
	Subfields []Subfield
}

// Subfield is a single coded value within a data field.
type Subfield struct {
	Code  string
	Value string
}

// NewRecord returns an empty record with the given leader.
func NewRecord(leader string) *Record {
	return &Record{Leader: leader}
}

// AddControlField appends a control field and returns the record for chaining.
func (r *Record) AddControlField(tag, value string) *Record {
	r.Fields = append(r.Fields, Field{Tag: tag, Value: value})
	return r
}

// AddDataField appends a data field built from code/value pairs
// ("a", "Title", "b", "Subtitle"). A trailing unpaired code is ignored.
func (r *Record) AddDataField(tag, ind1, ind2 string, pairs ...string) *Record {
	f := Field{Tag: tag, Ind1: ind1, Ind2: ind2}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Subfields = append(f.Subfields, Subfield{Code: pairs[i], Value: pairs[i+1]})
	}
	r.Fields = append(r.Fields, f)
	return r
}

// IsControlTag reports whether tag names a control field (00X).
func IsControlTag(tag string) bool {
	return len(tag) == 3 && strings.HasPrefix(tag, "00")
}

// IsControl reports whether f is a control field.
func (f Field) IsControl() bool {
	return IsControlTag(f.Tag)
}

// Subfield returns the first value of code, or "".
func (f Field) Subfield(code string) string {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return sf.Value
		}
	}
	return ""
}

// SubfieldValues returns every value of code in field order.
func (f Field) SubfieldValues(code string) []string {
	var out []string
	for _, sf := range f.Subfields {
		if sf.Code == code {
			out = append(out, sf.Value)
		}
	}
	return out
}

// HasSubfield reports whether code occurs at least once.
func (f Field) HasSubfield(code string) bool {
	for _, sf := range f.Subfields {
		if sf.Code == code {
			return true
		}
	}
	return false
}

// String renders the field in line MARC form, e.g. "245 10 $aTitle$bSub".
func (f Field) String() string {
	var sb strings.Builder
	sb.WriteString(f.Tag)
	sb.WriteByte(' ')
	if f.IsControl() {
		sb.WriteString(f.Value)
		return sb.String()
	}
	sb.WriteString(indicator(f.Ind1))
	sb.WriteString(indicator(f.Ind2))
	sb.WriteByte(' ')
	for _, sf := range f.Subfields {
		sb.WriteByte('$')
		sb.WriteString(sf.Code)
		sb.WriteString(sf.Value)
	}
	return sb.String()
}

func indicator(ind string) string {
	if ind == "" || ind == " " {
		return "#"
	}
	return ind
}

// FieldsByTag returns every field with the given tag in record order.
func (r *Record) FieldsByTag(tag string) []Field {
	var out []Field
	for _, f := range r.Fields {
		if f.Tag == tag {
			out = append(out, f)
		}
	}
	return out
}

// Field returns the first field with the given tag.
func (r *Record) Field(tag string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}

// DataFields returns the fields matching any of tags, keeping record order.
func (r *Record) DataFields(tags ...string) []Field {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[t] = true
	}
	var out []Field
	for _, f := range r.Fields {
		if want[f.Tag] && !f.IsControl() {
			out = append(out, f)
		}
	}
	return out
}

// ControlField returns the value of the first control field with tag.
func (r *Record) ControlField(tag string) (string, bool) {
	for _, f := range r.Fields {
		if f.Tag == tag && f.IsControl() {
			return f.Value, true
		}
	}
	return "", false
}

// ControlFields returns the values of all control fields with tag (007 repeats).
func (r *Record) ControlFields(tag string) []string {
	var out []string
	for _, f := range r.Fields {
		if f.Tag == tag && f.IsControl() {
			out = append(out, f.Value)
		}
	}
	return out
}

// LeaderByte returns the leader byte at pos. A leader too short to contain
// pos yields a *MalformedRecordError instead of an out-of-range access.
func (r *Record) LeaderByte(pos int) (byte, error) {
	if pos < 0 || pos >= len(r.Leader) {
		return 0, &MalformedRecordError{Tag: "LDR", Pos: pos, Len: len(r.Leader)}
	}
	return r.Leader[pos], nil
}

// ControlByte returns byte pos of the first control field with tag.
func (r *Record) ControlByte(tag string, pos int) (byte, error) {
	v, ok := r.ControlField(tag)
	if !ok {
		return 0, &MalformedRecordError{Tag: tag, Pos: pos, Reason: "missing"}
	}
	if pos < 0 || pos >= len(v) {
		return 0, &MalformedRecordError{Tag: tag, Pos: pos, Len: len(v)}
	}
	return v[pos], nil
}

// ID returns the control number (001).
func (r *Record) ID() string {
	v, _ := r.ControlField("001")
	return strings.TrimSpace(v)
}

// Source returns the control number identifier (003), usually an ISIL.
func (r *Record) Source() string {
	v, _ := r.ControlField("003")
	return strings.TrimSpace(v)
}
