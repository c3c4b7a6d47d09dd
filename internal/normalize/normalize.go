// Package normalize maps raw, untrusted source records into canonical events.
package normalize

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/sanitize"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/venue"
)

// ErrEmptyRecord marks a raw record with nothing usable in it. Callers skip
// such records and keep processing the batch.
var ErrEmptyRecord = errors.New("raw event has no usable fields")

// DefaultName is used when a record carries no title.
const DefaultName = "Unknown Event"

// DefaultCategory is assigned when no category is declared or inferred.
const DefaultCategory = "General"

// displayStatus is the pre-persistence display default. The authoritative
// status is recomputed from the date at reconciliation time.
const displayStatus = "Upcoming"

const (
	maxNameLength        = 150
	maxCategoryLength    = 50
	maxCityLength        = 50
	maxURLLength         = 500
	maxDescriptionLength = 200
)

// categoryKeywords is checked in order; the first category with a keyword hit
// in the title or description wins.
var categoryKeywords = []struct {
	name     string
	keywords []string
}{
	{"Technology", []string{"tech", "technology", "programming", "coding", "software", "ai", "machine learning", "data science"}},
	{"Music", []string{"music", "concert", "festival", "band", "dj", "live music", "performance"}},
	{"Art", []string{"art", "exhibition", "gallery", "painting", "sculpture", "photography"}},
	{"Sports", []string{"sports", "game", "match", "tournament", "fitness", "yoga", "gym", "marathon"}},
	{"Food", []string{"food", "restaurant", "cooking", "wine", "beer", "tasting", "culinary"}},
	{"Business", []string{"business", "networking", "conference", "workshop", "seminar", "startup", "entrepreneur"}},
	{"Education", []string{"education", "workshop", "course", "training", "lecture", "webinar"}},
}

// Normalize builds a canonical Event from one raw record. Every field
// defaults independently, so partial records still normalize; only a record
// with nothing usable at all is rejected.
func Normalize(raw models.RawEvent, city, category string) (models.Event, error) {
	if raw.Title == "" && raw.StartDate == "" && raw.When == "" && raw.Venue.Kind == models.VenueNone {
		return models.Event{}, ErrEmptyRecord
	}

	name := sanitize.Clean(raw.Title, maxNameLength)
	if name == "" {
		name = DefaultName
	}

	evt := models.Event{
		Name:        name,
		Date:        eventDate(raw),
		Venue:       venue.Resolve(raw.Venue),
		City:        sanitize.Clean(city, maxCityLength),
		Category:    eventCategory(raw, category),
		URL:         eventURL(raw),
		Status:      displayStatus,
		ScrapedAt:   time.Now().UTC().Format(time.RFC3339),
		Description: sanitize.Clean(raw.Description, maxDescriptionLength),
		Price:       raw.Price,
		Image:       raw.Image,
	}
	if evt.Price == "" {
		evt.Price = "Free"
	}

	return evt, nil
}

// eventDate picks the structured start date, then the human-readable "when"
// phrase, then falls back to today. The result is display text, not
// guaranteed parseable.
func eventDate(raw models.RawEvent) string {
	if raw.StartDate != "" {
		return raw.StartDate
	}
	if raw.When != "" {
		return raw.When
	}
	return time.Now().Format("2006-01-02")
}

// eventCategory prefers the requested category, then the source-declared one,
// then keyword inference over title and description.
func eventCategory(raw models.RawEvent, requested string) string {
	if requested != "" && !strings.EqualFold(requested, "all") {
		return sanitize.Clean(requested, maxCategoryLength)
	}
	if raw.Category != "" {
		return sanitize.Clean(raw.Category, maxCategoryLength)
	}

	title := strings.ToLower(raw.Title)
	description := strings.ToLower(raw.Description)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(title, kw) || strings.Contains(description, kw) {
				return c.name
			}
		}
	}

	return DefaultCategory
}

func eventURL(raw models.RawEvent) string {
	if raw.Link != "" {
		return sanitize.Clean(raw.Link, maxURLLength)
	}
	if raw.TicketLink != "" {
		return sanitize.Clean(raw.TicketLink, maxURLLength)
	}
	return "#"
}
