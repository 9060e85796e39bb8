package interceptor

import (
	"regexp"
)

// Redaction placeholders.
const (
	EmailPlaceholder  = "<email_omitted>"
	PhonePlaceholder  = "<phone_omitted>"
	CreditPlaceholder = "<credit_omitted>"
)

type redaction struct {
	pattern     *regexp.Regexp
	placeholder string
}

// redactions are tried in order; only the first matching category is applied.
var redactions = []redaction{
	{
		pattern:     regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`),
		placeholder: EmailPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{3}\)|\b\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}\b`),
		placeholder: PhonePlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`\b(?:\d[ \-]?){12,18}\d\b`),
		placeholder: CreditPlaceholder,
	},
}

// Redact replaces personal data in value. The first pattern that matches
// replaces all of its matches; later patterns are not applied.
func Redact(value string) string {
	for _, r := range redactions {
		if r.pattern.MatchString(value) {
			return r.pattern.ReplaceAllLiteralString(value, r.placeholder)
		}
	}
	return value
}
