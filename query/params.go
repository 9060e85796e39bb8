// Package query builds ordered, correctly encoded query strings.
//
// A Param is either raw, in which case key and value are percent-encoded when
// the query is rendered, or pre-encoded, in which case they are placed
// verbatim after validation. Repeated keys are appended, never overwritten.
package query

import (
	"net/url"
	"strings"

	cioerrors "github.com/jonesrussell/north-cloud/constructorio/errors"
)

// Param is a single key/value pair.
type Param struct {
	Key     string
	Value   string
	Encoded bool
}

// Facet is a facet name with the values to filter on.
type Facet struct {
	Name   string
	Values []string
}

// Params is an ordered list of query parameters. The zero value is ready to use.
type Params struct {
	items []Param
}

// Add appends a raw key/value pair.
func (p *Params) Add(key, value string) {
	p.items = append(p.items, Param{Key: key, Value: value})
}

// AddEncoded appends a key/value pair that is already percent-encoded.
func (p *Params) AddEncoded(key, value string) {
	p.items = append(p.items, Param{Key: key, Value: value, Encoded: true})
}

// AddAll appends one raw pair per value.
func (p *Params) AddAll(key string, values []string) {
	for _, v := range values {
		p.Add(key, v)
	}
}

// AddFilters appends filters[<name>]=<value> for every value of every facet,
// in the order given.
func (p *Params) AddFilters(facets []Facet) {
	for _, f := range facets {
		key := FilterKey(f.Name)
		for _, v := range f.Values {
			p.AddEncoded(key, EncodeComponent(v))
		}
	}
}

// AddParam appends an existing Param unchanged.
func (p *Params) AddParam(param Param) {
	p.items = append(p.items, param)
}

// Extend appends every pair of other.
func (p *Params) Extend(other Params) {
	p.items = append(p.items, other.items...)
}

// Len returns the number of pairs.
func (p Params) Len() int {
	return len(p.items)
}

// All returns a copy of the pairs in order.
func (p Params) All() []Param {
	return append([]Param(nil), p.items...)
}

// Values returns every raw value recorded for key. Pre-encoded pairs are
// decoded before comparison.
func (p Params) Values(key string) []string {
	var out []string
	for _, item := range p.items {
		k, v := item.Key, item.Value
		if item.Encoded {
			k, v = unescape(k), unescape(v)
		}
		if k == key {
			out = append(out, v)
		}
	}
	return out
}

// Get returns the first value for key, or "".
func (p Params) Get(key string) string {
	if vs := p.Values(key); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Encode renders the query string without a leading '?'. Pre-encoded pairs
// that are not well formed produce a build error.
func (p Params) Encode() (string, error) {
	var b strings.Builder
	for i, item := range p.items {
		key, value := item.Key, item.Value
		if item.Encoded {
			if err := ValidateEncoded(key); err != nil {
				return "", cioerrors.Buildf("param %d key %q: %v", i, key, err)
			}
			if err := ValidateEncoded(value); err != nil {
				return "", cioerrors.Buildf("param %d value for %q: %v", i, key, err)
			}
		} else {
			key, value = EncodeComponent(key), EncodeComponent(value)
		}
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value)
	}
	return b.String(), nil
}

// EncodeComponent percent-encodes s for use as a query key or value. Spaces
// become %20, never '+'.
func EncodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// FilterKey returns the pre-encoded filters[<name>] key.
func FilterKey(name string) string {
	return "filters%5B" + EncodeComponent(name) + "%5D"
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

// BuildURL joins the scheme and host of base with an already escaped path
// and the encoded params.
func BuildURL(base *url.URL, escapedPath string, p Params) (string, error) {
	encoded, err := p.Encode()
	if err != nil {
		return "", err
	}
	raw := base.Scheme + "://" + base.Host + escapedPath
	if encoded != "" {
		raw += "?" + encoded
	}
	return raw, nil
}
