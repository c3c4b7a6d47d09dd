package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanBasic(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"nil value", nil, ""},
		{"empty string", "", ""},
		{"plain string", "Live Jazz Night", "Live Jazz Night"},
		{"surrounding whitespace", "  Live Jazz Night  ", "Live Jazz Night"},
		{"newlines and tabs", "Line1\nLine2\tLine3", "Line1 Line2 Line3"},
		{"carriage returns", "a\r\nb", "a b"},
		{"whitespace runs collapse", "too    many     spaces", "too many spaces"},
		{"braces stripped", "{Koramangala}", "Koramangala"},
		{"null bytes removed", "abc\x00def", "abcdef"},
		{"non-string stringified", 42, "42"},
		{"float stringified", 3.5, "3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.value, 500))
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"Live Jazz Night",
		"  messy\n\tinput  ",
		`{"string_value": "Phoenix Marketcity"}`,
		"a, a, b",
	}
	for _, in := range inputs {
		once := Clean(in, 200)
		twice := Clean(once, 200)
		assert.Equal(t, once, twice, "Clean should be stable for %q", in)
	}
}

func TestCleanRespectsLengthBound(t *testing.T) {
	long := strings.Repeat("x", 300)
	out := Clean(long, 150)
	require.Equal(t, 150, len([]rune(out)))
	assert.True(t, strings.HasSuffix(out, "..."))
}

func TestCleanRecoversLeakedSerialization(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			"string_value wrapper",
			`{"string_value": Phoenix Marketcity}`,
			"Phoenix Marketcity",
		},
		{
			"list_value with duplicates",
			`{list_value: {values: [Koramangala, Koramangala, Bangalore]}}`,
			"Koramangala, Bangalore",
		},
		{
			"nothing survives recovery",
			`{list_value: {values: []}}`,
			InvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.value, 500))
		})
	}
}

func TestDedupeParts(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected []string
	}{
		{"empty input", nil, []string{}},
		{"all empty parts", []string{"", "  ", ""}, []string{}},
		{"keeps first occurrence order", []string{"b", "a", "b", "c", "a"}, []string{"b", "a", "c"}},
		{"trims before comparing", []string{" a ", "a"}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeParts(tt.parts))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))

	out := Truncate("abcdefghij", 8)
	assert.Equal(t, "abcde...", out)
	assert.Equal(t, 8, len([]rune(out)))

	// Rune-aware: multibyte text must not be cut mid-character.
	wide := strings.Repeat("日", 10)
	out = Truncate(wide, 6)
	assert.Equal(t, "日日日...", out)
	assert.Equal(t, 6, len([]rune(out)))
}
