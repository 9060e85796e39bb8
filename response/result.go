package response

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Result is one item or suggestion.
type Result struct {
	Value        string         `json:"value"`
	Data         ResultData     `json:"data"`
	MatchedTerms []string       `json:"matched_terms,omitempty"`
	IsSlotted    bool           `json:"is_slotted,omitempty"`
	Labels       map[string]any `json:"labels,omitempty"`
	Variations   []Result       `json:"variations,omitempty"`
	Strategy     *Strategy      `json:"strategy,omitempty"`
}

// Strategy names the recommendation strategy that produced a result.
type Strategy struct {
	ID string `json:"id"`
}

// ResultData holds the known item fields. Every other key of the data object
// lands in Metadata in document order.
type ResultData struct {
	ID          string
	Description string
	URL         string
	ImageURL    string
	VariationID string
	Groups      []ResultGroup
	Facets      []ResultFacet
	Metadata    Metadata
}

// ResultGroup is a group an item belongs to.
type ResultGroup struct {
	GroupID     string `json:"group_id"`
	DisplayName string `json:"display_name"`
	Path        string `json:"path,omitempty"`
}

// ResultFacet is a facet value attached to an item.
type ResultFacet struct {
	Name   string `json:"name"`
	Values []any  `json:"values"`
}

// UnmarshalJSON decodes the known fields by name and folds the rest into Metadata.
func (d *ResultData) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	if err := expectObject(dec); err != nil {
		return err
	}

	var out ResultData
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		if err := out.decodeField(dec, key); err != nil {
			return fmt.Errorf("decode data.%s: %w", key, err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

func (d *ResultData) decodeField(dec *json.Decoder, key string) error {
	switch key {
	case "id":
		return d.decodeScalar(dec, key, &d.ID)
	case "description":
		return d.decodeScalar(dec, key, &d.Description)
	case "url":
		return d.decodeScalar(dec, key, &d.URL)
	case "image_url":
		return d.decodeScalar(dec, key, &d.ImageURL)
	case "variation_id":
		return d.decodeScalar(dec, key, &d.VariationID)
	case "groups":
		return dec.Decode(&d.Groups)
	case "facets":
		return dec.Decode(&d.Facets)
	default:
		v, err := decodeValue(dec)
		if err != nil {
			return err
		}
		d.Metadata.set(key, v)
		return nil
	}
}

// decodeScalar stores a string or number in dst. Null leaves dst empty and
// any other value is kept in Metadata under key.
func (d *ResultData) decodeScalar(dec *json.Decoder, key string, dst *string) error {
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*dst = ""
	case string:
		*dst = t
	case json.Number:
		*dst = t.String()
	default:
		*dst = ""
		d.Metadata.set(key, t)
	}
	return nil
}

// MarshalJSON writes known fields first, then metadata in document order.
func (d ResultData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	member := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		return writeMember(&buf, key, value)
	}

	known := []struct {
		key   string
		value any
		set   bool
	}{
		{"id", d.ID, d.ID != ""},
		{"description", d.Description, d.Description != ""},
		{"url", d.URL, d.URL != ""},
		{"image_url", d.ImageURL, d.ImageURL != ""},
		{"variation_id", d.VariationID, d.VariationID != ""},
		{"groups", d.Groups, d.Groups != nil},
		{"facets", d.Facets, d.Facets != nil},
	}
	for _, f := range known {
		if !f.set {
			continue
		}
		if err := member(f.key, f.value); err != nil {
			return nil, err
		}
	}
	for _, k := range d.Metadata.keys {
		if err := member(k, d.Metadata.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
