package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errNotObject = errors.New("expected a JSON object")

// Metadata is an ordered JSON object. Values are string, json.Number, bool,
// nil, []any or Metadata, so numbers are never confused with strings.
type Metadata struct {
	keys   []string
	values map[string]any
}

// Len returns the number of keys.
func (m Metadata) Len() int {
	return len(m.keys)
}

// Keys returns the keys in document order.
func (m Metadata) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Get returns the value for key.
func (m Metadata) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Metadata) set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// MarshalJSON writes the keys in document order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, k, m.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	md, ok := v.(Metadata)
	if !ok {
		return errNotObject
	}
	*m = md
	return nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	rawKey, err := json.Marshal(key)
	if err != nil {
		return err
	}
	rawValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	buf.Write(rawKey)
	buf.WriteByte(':')
	buf.Write(rawValue)
	return nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

// decodeValue reads one JSON value from dec. Objects become Metadata.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return t, nil
	}
}

func decodeObject(dec *json.Decoder) (Metadata, error) {
	var m Metadata
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return Metadata{}, err
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Metadata{}, fmt.Errorf("decode %s: %w", key, err)
		}
		m.set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("unexpected object key %v", tok)
	}
	return key, nil
}

// expectObject consumes the opening brace of an object.
func expectObject(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	return nil
}
