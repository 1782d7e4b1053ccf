package citation

import (
	"net/url"
	"strings"
)

// Params is a built OpenURL context object.
type Params struct {
	Kind   Kind       `json:"kind" yaml:"kind"`
	Values url.Values `json:"values" yaml:"values"`
}

// Get returns the first value of key.
func (p Params) Get(key string) string {
	return p.Values.Get(key)
}

// Encode returns the percent-encoded query string, keys sorted.
func (p Params) Encode() string {
	return p.Values.Encode()
}

// URL appends the query to a link resolver base URL. Without a resolver
// only the query string is returned.
func (p Params) URL(resolver string) string {
	q := p.Encode()
	switch {
	case resolver == "":
		return q
	case strings.Contains(resolver, "?"):
		if strings.HasSuffix(resolver, "?") || strings.HasSuffix(resolver, "&") {
			return resolver + q
		}
		return resolver + "&" + q
	}
	return resolver + "?" + q
}
