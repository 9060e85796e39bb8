package logger

import (
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Keys shared by the SDK's log entries.
const (
	KeyEndpoint  = "endpoint"
	KeyEvent     = "event"
	KeyStatus    = "status"
	KeyAttempt   = "attempt"
	KeySessionID = "session_id"
)

// Endpoint names the API endpoint a request went to, in its templated form.
func Endpoint(name string) Field {
	return zap.String(KeyEndpoint, name)
}

// Event names a tracking event.
func Event(name string) Field {
	return zap.String(KeyEvent, name)
}

// Status is an HTTP status code.
func Status(code int) Field {
	return zap.Int(KeyStatus, code)
}

// Attempt is a 1-based delivery attempt.
func Attempt(n int) Field {
	return zap.Int(KeyAttempt, n)
}

// SessionID is the numeric session id.
func SessionID(id int) Field {
	return zap.Int(KeySessionID, id)
}

// URL logs scheme, host and path only. Query strings carry the API key and
// user identifiers and are never written.
func URL(key string, u *url.URL) Field {
	if u == nil {
		return zap.Skip()
	}
	stripped := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path, RawPath: u.RawPath}
	return zap.String(key, stripped.String())
}

// String creates a string field.
func String(key, val string) Field {
	return zap.String(key, val)
}

// Int creates an int field.
func Int(key string, val int) Field {
	return zap.Int(key, val)
}

// Bool creates a bool field.
func Bool(key string, val bool) Field {
	return zap.Bool(key, val)
}

// Duration creates a duration field.
func Duration(key string, val time.Duration) Field {
	return zap.Duration(key, val)
}

// Error creates an error field with the key "error".
func Error(err error) Field {
	return zap.Error(err)
}

// Any creates a field that can hold any value.
func Any(key string, val any) Field {
	return zap.Any(key, val)
}

// Strings creates a string slice field.
func Strings(key string, val []string) Field {
	return zap.Strings(key, val)
}
