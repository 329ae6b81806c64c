// Package redact masks account-shaped digit sequences in text bound for
// external services. Masking keeps the surrounding sentence intact so the
// synthesis output still reads naturally; nothing is rejected, only
// replaced.
package redact

import (
	"regexp"
	"strings"
)

var (
	// 123-45-6789
	ssnPattern = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	// 13-16 digits, optionally grouped by spaces or dashes.
	cardPattern = regexp.MustCompile(`\b(?:\d[ -]?){12,15}\d\b`)
	// Bare 9-digit runs (ABA routing numbers, undashed SSNs).
	routingPattern = regexp.MustCompile(`\b\d{9}\b`)
)

// Text masks SSN-shaped, card-shaped, and 9-digit routing-shaped substrings.
// SSNs become XXX-XX-XXXX; card numbers keep only their last four digits,
// separators preserved; routing numbers are fully masked.
func Text(s string) string {
	s = ssnPattern.ReplaceAllString(s, "XXX-XX-XXXX")
	s = cardPattern.ReplaceAllStringFunc(s, maskCard)
	s = routingPattern.ReplaceAllStringFunc(s, func(m string) string {
		return strings.Repeat("X", len(m))
	})
	return s
}

// maskCard replaces every digit except the last four with X, leaving
// grouping separators where they were.
func maskCard(m string) string {
	digits := 0
	for _, r := range m {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	keepFrom := digits - 4

	var b strings.Builder
	b.Grow(len(m))
	seen := 0
	for _, r := range m {
		switch {
		case r >= '0' && r <= '9':
			if seen < keepFrom {
				b.WriteByte('X')
			} else {
				b.WriteRune(r)
			}
			seen++
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
