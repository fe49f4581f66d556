// Package postcode canonicalizes UK postcode input and derives the partition
// keys used to address postcode data chunks.
package postcode

import (
	"regexp"
	"strings"
	"unicode"
)

// inwardLen is the fixed length of the inward code ("1AA").
const inwardLen = 3

// minCompleteLen is the shortest compacted input that can hold an outward
// code plus an inward code.
const minCompleteLen = 5

var (
	outwardRe = regexp.MustCompile(`^[A-Z]{1,2}[0-9]{1,2}[A-Z]?`)
	prefixRe  = regexp.MustCompile(`^[A-Z]+`)
)

// Compact removes all whitespace and uppercases s.
func Compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, s)
}

// Normalize returns the canonical form of raw: uppercase, no whitespace except
// a single space before the inward code. Input shorter than a complete
// postcode is returned compacted without a space.
func Normalize(raw string) string {
	clean := []rune(Compact(raw))
	if len(clean) < minCompleteLen {
		return string(clean)
	}
	split := len(clean) - inwardLen
	return string(clean[:split]) + " " + string(clean[split:])
}

// OutwardCode returns the outward code at the start of a canonical postcode,
// e.g. "SW1A" for "SW1A 1AA". It reports false when the input does not start
// with a recognizable outward code.
func OutwardCode(canonical string) (string, bool) {
	m := outwardRe.FindString(canonical)
	if m == "" {
		return "", false
	}
	return m, true
}

// AreaPrefix returns the leading run of letters, e.g. "IV" for "IV1 2DA".
func AreaPrefix(pc string) (string, bool) {
	m := prefixRe.FindString(pc)
	if m == "" {
		return "", false
	}
	return m, true
}

// Format returns the display form of a postcode. Values that already contain
// a space are returned unchanged.
func Format(pc string) string {
	if strings.Contains(pc, " ") {
		return pc
	}
	r := []rune(pc)
	if len(r) <= inwardLen {
		return pc
	}
	split := len(r) - inwardLen
	return string(r[:split]) + " " + string(r[split:])
}
