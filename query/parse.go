package query

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	errRawSpace     = errors.New("contains an unencoded space")
	errReservedChar = errors.New("contains an unencoded delimiter")
	errBadEscape    = errors.New("contains a malformed percent escape")
)

// ValidateEncoded reports whether s is safe to place in a query verbatim.
func ValidateEncoded(s string) error {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ':
			return errRawSpace
		case c == '&' || c == '=' || c == '#':
			return errReservedChar
		case c < 0x20 || c == 0x7f:
			return fmt.Errorf("contains control character 0x%02x", c)
		case c == '%':
			if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
				return errBadEscape
			}
			i += 2
		}
	}
	return nil
}

// ParseQuery splits a raw query string into raw Params, keeping the original
// order. url.ParseQuery is not used because it groups values by key.
func ParseQuery(raw string) (Params, error) {
	var p Params
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return p, nil
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return Params{}, fmt.Errorf("parse key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return Params{}, fmt.Errorf("parse value for %q: %w", key, err)
		}
		p.Add(key, value)
	}
	return p, nil
}

func isHex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}
