package postcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase with space", input: "n15 5qa", expected: "N15 5QA"},
		{name: "no space", input: "N155QA", expected: "N15 5QA"},
		{name: "short input unchanged", input: "SW1A", expected: "SW1A"},
		{name: "long outward", input: "sw1a1aa", expected: "SW1A 1AA"},
		{name: "extra whitespace", input: "  SW1A \t 1AA \n", expected: "SW1A 1AA"},
		{name: "internal spaces collapse", input: "S W 1 A 1 A A", expected: "SW1A 1AA"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
		{name: "exactly five", input: "a11aa", expected: "A1 1AA"},
		{name: "four chars", input: "a1 1a", expected: "A11A"},
		{name: "garbage still split", input: "hello world", expected: "HELLOWO RLD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "a", "n1", "n15", "n15 5", "n15 5q", "n15 5qa", "N15 5QA",
		"sw1a1aa", "SW1A 1AA", "  e c 1 a 1 b b ", "12345", "ÄBCDEF", "x y z",
		"IV1 2DA", "iv12da", "AB CD EF",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestOutwardCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "N15 5QA", expected: "N15", ok: true},
		{input: "SW1A 1AA", expected: "SW1A", ok: true},
		{input: "IV1 2DA", expected: "IV1", ok: true},
		{input: "EC1A 1BB", expected: "EC1A", ok: true},
		{input: "M1 1AE", expected: "M1", ok: true},
		{input: "B33 8TH", expected: "B33", ok: true},
		{input: "1AA", ok: false},
		{input: "", ok: false},
		{input: "ABC1 1AA", ok: false},
		{input: "n15 5qa", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := OutwardCode(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAreaPrefix(t *testing.T) {
	p, ok := AreaPrefix("IV1 2DA")
	assert.True(t, ok)
	assert.Equal(t, "IV", p)

	p, ok = AreaPrefix("N15 5QA")
	assert.True(t, ok)
	assert.Equal(t, "N", p)

	_, ok = AreaPrefix("15 5QA")
	assert.False(t, ok)
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "N155QA", Compact(" n15 5qa "))
	assert.Equal(t, "", Compact("\t\n"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "N15 5QA", Format("N15 5QA"))
	assert.Equal(t, "N15 5QA", Format("N155QA"))
	assert.Equal(t, "M1 1AE", Format("M11AE"))
	assert.Equal(t, "1AA", Format("1AA"))
	assert.Equal(t, "", Format(""))
}
