package marc

import "fmt"

// MalformedRecordError reports a structural fault: a leader or fixed-length
// control field too short for the requested position, or a leader of the
// wrong width at parse time.
type MalformedRecordError struct {
	Tag    string
	Pos    int
	Len    int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed record: %s %s", e.Tag, e.Reason)
	}
	return fmt.Sprintf("malformed record: %s position %d out of range (length %d)", e.Tag, e.Pos, e.Len)
}

// UnparsableRecordError is returned when raw data could not be decoded as
// MARC-XML (even after repair) nor as ISO 2709.
type UnparsableRecordError struct {
	Format string
	Err    error
}

func (e *UnparsableRecordError) Error() string {
	return fmt.Sprintf("unparsable %s record: %v", e.Format, e.Err)
}

func (e *UnparsableRecordError) Unwrap() error {
	return e.Err
}
