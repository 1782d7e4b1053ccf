// Package export defines the interface for record input and output format
// plugins.
package export

import (
	"context"
	"io"

	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/marc"
)

// Format defines the interface that all format plugins must implement.
type Format interface {
	// Name returns the format identifier (e.g., "marcxml", "csl", "openurl")
	Name() string

	// Description returns a human-readable format description
	Description() string

	// Extensions returns file extensions associated with this format
	Extensions() []string

	// CanParse returns true if this format can parse the given input
	CanParse(peek []byte) bool
}

// Parser is a format that reads MARC records.
type Parser interface {
	Format

	Parse(r io.Reader, opts *ParseOptions) ([]*marc.Record, error)
}

// Serializer is a format that writes records, through their drivers.
// Serializers that resolve containers pass ctx to the drivers.
type Serializer interface {
	Format

	Serialize(ctx context.Context, w io.Writer, records []*driver.Driver, opts *SerializeOptions) error
}

// ParseOptions contains options for parsing.
type ParseOptions struct {
	// Lenient keeps records with a malformed leader
	Lenient bool

	// SourceName is an identifier for the source (for error messages)
	SourceName string
}

// SerializeOptions contains options for serialization.
type SerializeOptions struct {
	// Pretty enables pretty-printing (for JSON formats)
	Pretty bool

	// Resolver is the link resolver base URL prepended to OpenURLs
	Resolver string
}

// MarcOptions converts ParseOptions to marc.Parse options.
func (o *ParseOptions) MarcOptions() []marc.ParseOption {
	if o == nil || !o.Lenient {
		return nil
	}
	return []marc.ParseOption{marc.Lenient()}
}

// NewParseOptions creates ParseOptions with defaults.
func NewParseOptions() *ParseOptions {
	return &ParseOptions{}
}

// NewSerializeOptions creates SerializeOptions with defaults.
func NewSerializeOptions() *SerializeOptions {
	return &SerializeOptions{}
}
