// Package sanitize coerces arbitrary, untrusted values into clean,
// length-bounded display strings safe to persist in a tabular store.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
)

// InvalidData is returned when leaked-serialization recovery leaves nothing usable.
const InvalidData = "Invalid Data"

var (
	controlChars = regexp.MustCompile(`[\n\t\r]`)
	whitespace   = regexp.MustCompile(`\s+`)
	structural   = regexp.MustCompile(`[{}:\[\]]`)
	repeatComma  = regexp.MustCompile(`,+`)

	markerReplacer = strings.NewReplacer(`"string_value":`, "", "list_value", "", "values", "")
)

// Clean converts value to a string, strips control characters and braces,
// collapses whitespace runs, recovers from leaked serialization artifacts,
// and truncates the result to maxLength runes.
func Clean(value interface{}, maxLength int) string {
	if value == nil {
		return ""
	}

	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	if s == "" {
		return ""
	}

	s = controlChars.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if strings.Contains(s, "string_value") || strings.Contains(s, "list_value") {
		s = recoverLeaked(s)
	}

	return Truncate(s, maxLength)
}

// recoverLeaked strips the wrapper markers and structural punctuation of a
// serialization artifact that leaked into a text field, then rebuilds a
// readable comma-separated string from the surviving unique parts.
func recoverLeaked(s string) string {
	s = markerReplacer.Replace(s)
	s = structural.ReplaceAllString(s, "")
	s = repeatComma.ReplaceAllString(s, ",")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	parts := DedupeParts(strings.Split(s, ","))
	if len(parts) == 0 {
		return InvalidData
	}
	return strings.Join(parts, ", ")
}

// DedupeParts trims each part, drops empties, and removes duplicates keeping
// first-occurrence order.
func DedupeParts(parts []string) []string {
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Truncate cuts s to maxLength runes, replacing the tail with "..." so the
// result is exactly maxLength runes long when truncation happens.
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength-3]) + "..."
}
