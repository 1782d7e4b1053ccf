// Package openurl provides a serializer writing one OpenURL per record.
package openurl

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/finc/marcfacts/citation"
	"github.com/finc/marcfacts/driver"
	"github.com/finc/marcfacts/export"
)

// Format implements the OpenURL line format.
type Format struct{}

var _ export.Serializer = (*Format)(nil)

// Name returns the format identifier.
func (f *Format) Name() string {
	return "openurl"
}

// Description returns a human-readable format description.
func (f *Format) Description() string {
	return "OpenURL 1.0 KEV context objects, one per line"
}

// Extensions returns file extensions associated with this format.
func (f *Format) Extensions() []string {
	return []string{"openurl"}
}

// CanParse returns true if the input looks like an OpenURL query.
func (f *Format) CanParse(peek []byte) bool {
	return bytes.Contains(peek, []byte("ctx_ver=Z39.88-2004"))
}

// Serialize writes each record's OpenURL, prefixed by opts.Resolver when
// set.
func (f *Format) Serialize(ctx context.Context, w io.Writer, records []*driver.Driver, opts *export.SerializeOptions) error {
	if opts == nil {
		opts = export.NewSerializeOptions()
	}
	for _, d := range records {
		resolver := opts.Resolver
		if resolver == "" {
			resolver = d.Config().OpenURL.Resolver
		}
		p := citation.Build(ctx, d)
		if _, err := fmt.Fprintln(w, p.URL(resolver)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	export.Register(&Format{})
}
