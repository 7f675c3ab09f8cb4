// Package policy guards patient privacy at the logging boundary. Session
// transcripts are health data; anything that leaves the session store gets
// masked first.
package policy

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
)

// normalizeDigits maps Arabic-Indic and Eastern Arabic-Indic digits to ASCII
// so the patterns catch numbers the way patients type them (٠١٢ or ۰۱۲).
func normalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

// RedactPII masks common high-risk PII patterns. Eastern digits come back
// normalized to ASCII; changed reports whether anything was masked, never
// mere digit normalization.
func RedactPII(input string) (redacted string, changed bool) {
	out := normalizeDigits(input)

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	// Run card redaction before phone to avoid card numbers being classified as phone.
	next = cardPattern.ReplaceAllString(out, "[REDACTED_CARD]")
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	changed = changed || next != out
	out = next

	return out, changed
}
