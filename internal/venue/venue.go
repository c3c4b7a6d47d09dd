// Package venue extracts a best-effort display venue from the heterogeneous
// shapes event sources deliver venue data in.
package venue

import (
	"regexp"
	"strings"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/sanitize"
)

// Unknown is the sentinel for venues that could not be resolved.
const Unknown = "Unknown Venue"

const maxVenueLength = 200

// A venue keeps at most this many comma-separated parts.
const maxVenueParts = 3

var (
	whitespace   = regexp.MustCompile(`\s+`)
	repeatComma  = regexp.MustCompile(`,+`)
	valuesMarker = regexp.MustCompile(`values\s*:`)
)

// Resolve returns a cleaned display venue for the given raw shape. It never
// fails; anything unresolvable yields Unknown.
func Resolve(v models.RawVenue) string {
	raw := Unknown

	switch v.Kind {
	case models.VenueText:
		raw = v.Text
	case models.VenueParts:
		parts := sanitize.DedupeParts(v.Parts)
		if len(parts) > 0 {
			raw = strings.Join(parts, ", ")
		}
	case models.VenueNamed:
		if v.Name != "" {
			raw = v.Name
		} else if v.Address != "" {
			raw = v.Address
		}
	case models.VenueWrapped:
		texts := make([]string, 0, len(v.Values))
		for _, w := range v.Values {
			texts = append(texts, w.StringValue)
		}
		parts := sanitize.DedupeParts(texts)
		if len(parts) > 0 {
			raw = strings.Join(parts, ", ")
		}
	}

	return cleanVenueString(raw)
}

// cleanVenueString strips leaked serialization markers, deduplicates lines,
// collapses comma and whitespace runs, caps the part count, and bounds the
// length. An empty result falls back to Unknown.
func cleanVenueString(s string) string {
	if s == "" || s == Unknown {
		return Unknown
	}

	s = strings.ReplaceAll(s, `"string_value":`, "")
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = valuesMarker.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "list_value", "")

	lines := sanitize.DedupeParts(strings.Split(s, "\n"))
	s = strings.Join(lines, ", ")

	s = repeatComma.ReplaceAllString(s, ",")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")

	parts := strings.Split(s, ",")
	if len(parts) > maxVenueParts {
		kept := make([]string, 0, maxVenueParts)
		for _, p := range parts[:maxVenueParts] {
			kept = append(kept, strings.TrimSpace(p))
		}
		s = strings.Join(kept, ", ")
	}

	s = sanitize.Truncate(s, maxVenueLength)
	if s == "" {
		return Unknown
	}
	return s
}
