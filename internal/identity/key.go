// Package identity derives stable deduplication keys for events.
package identity

import (
	"regexp"
	"strings"
)

const maxKeyLength = 100

var (
	whitespace  = regexp.MustCompile(`\s+`)
	nonKeyChars = regexp.MustCompile(`[^a-zA-Z0-9\-]`)
)

// FromEvent derives a deduplication key from an event's name, date and venue.
// The key is lowercase, alphanumeric-and-hyphen only, and capped at 100
// characters. The cap means two distinct very long events can collide; that
// is an accepted limitation, not detected.
func FromEvent(name, date, venue string) string {
	key := name + "-" + date + "-" + venue
	key = whitespace.ReplaceAllString(key, "-")
	key = nonKeyChars.ReplaceAllString(key, "")
	key = strings.ToLower(key)
	if len(key) > maxKeyLength {
		key = key[:maxKeyLength]
	}
	return key
}

// FromRow reproduces a key from stored field values for rows persisted
// without one. It deliberately skips the character filtering and length cap
// that FromEvent applies, so a round trip through storage can map the same
// logical event to a different key. Kept as-is until canonical behavior is
// decided; tests pin it.
func FromRow(name, date, venue string) string {
	key := name + "-" + date + "-" + venue
	key = whitespace.ReplaceAllString(key, "-")
	return strings.ToLower(key)
}
