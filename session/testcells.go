package session

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// TestCellPrefix is prepended to test cell keys on the wire.
const TestCellPrefix = "ef-"

const (
	pairSeparator  = ","
	fieldSeparator = ":"
)

// TestCell is an experiment variant assigned to this client.
type TestCell struct {
	Key   string
	Value string
}

// EncodeTestCells serializes cells for storage. Keys and values are base64
// encoded, so separators never collide with content.
func EncodeTestCells(cells []TestCell) string {
	parts := make([]string, 0, len(cells))
	for _, c := range cells {
		parts = append(parts,
			base64.StdEncoding.EncodeToString([]byte(c.Key))+
				fieldSeparator+
				base64.StdEncoding.EncodeToString([]byte(c.Value)))
	}
	return strings.Join(parts, pairSeparator)
}

// DecodeTestCells reverses EncodeTestCells, preserving order.
func DecodeTestCells(encoded string) ([]TestCell, error) {
	if encoded == "" {
		return nil, nil
	}

	pairs := strings.Split(encoded, pairSeparator)
	cells := make([]TestCell, 0, len(pairs))
	for i, pair := range pairs {
		rawKey, rawValue, ok := strings.Cut(pair, fieldSeparator)
		if !ok {
			return nil, fmt.Errorf("test cell %d: missing separator", i)
		}
		key, err := base64.StdEncoding.DecodeString(rawKey)
		if err != nil {
			return nil, fmt.Errorf("test cell %d key: %w", i, err)
		}
		value, err := base64.StdEncoding.DecodeString(rawValue)
		if err != nil {
			return nil, fmt.Errorf("test cell %d value: %w", i, err)
		}
		cells = append(cells, TestCell{Key: string(key), Value: string(value)})
	}
	return cells, nil
}
