package interceptor

import (
	"regexp"
	"slices"
)

// PathMatcher matches a request path exactly or by pattern.
type PathMatcher struct {
	Exact   string
	Pattern *regexp.Regexp
}

// Match reports whether path matches.
func (m PathMatcher) Match(path string) bool {
	if m.Pattern != nil {
		return m.Pattern.MatchString(path)
	}
	return path == m.Exact
}

// BehavioralPaths lists the event endpoints whose query values are redacted,
// in evaluation order.
var BehavioralPaths = []PathMatcher{
	{Exact: "/behavior"},
	{Pattern: regexp.MustCompile(`^/autocomplete/[^/]+/(select|search|click_through|conversion|purchase)$`)},
	{Pattern: regexp.MustCompile(`^/v2/behavioral_action/[a-z_]+$`)},
}

// untimedPaths never carry the _dt timestamp.
var untimedPaths = []string{
	"/browse/groups",
	"/browse/facets",
	"/browse/facet_options",
}

// IsBehavioralPath reports whether path is an event endpoint.
func IsBehavioralPath(path string) bool {
	for _, m := range BehavioralPaths {
		if m.Match(path) {
			return true
		}
	}
	return false
}

// SendsTimestamp reports whether requests to path carry _dt.
func SendsTimestamp(path string) bool {
	return !slices.Contains(untimedPaths, path)
}
