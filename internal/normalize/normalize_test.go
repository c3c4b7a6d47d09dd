package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

func TestNormalizeCompleteRecord(t *testing.T) {
	raw := models.RawEvent{
		Title:     "AI Meetup",
		StartDate: "2024-01-01",
		Venue: models.RawVenue{
			Kind:  models.VenueParts,
			Parts: []string{"Koramangala", "Koramangala", "Bangalore"},
		},
		Link:  "https://example.com/ai-meetup",
		Price: "₹500",
	}

	evt, err := Normalize(raw, "bangalore", "all")
	require.NoError(t, err)

	assert.Equal(t, "AI Meetup", evt.Name)
	assert.Equal(t, "2024-01-01", evt.Date)
	assert.Equal(t, "Koramangala, Bangalore", evt.Venue)
	assert.Equal(t, "bangalore", evt.City)
	assert.Equal(t, "Technology", evt.Category)
	assert.Equal(t, "https://example.com/ai-meetup", evt.URL)
	assert.Equal(t, "Upcoming", evt.Status)
	assert.Equal(t, "₹500", evt.Price)

	scrapedAt, err := time.Parse(time.RFC3339, evt.ScrapedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), scrapedAt, time.Minute)
}

func TestNormalizeRejectsEmptyRecord(t *testing.T) {
	_, err := Normalize(models.RawEvent{}, "mumbai", "all")
	assert.ErrorIs(t, err, ErrEmptyRecord)
}

func TestNormalizePartialRecordStillNormalizes(t *testing.T) {
	// Venue alone is enough to keep the record.
	raw := models.RawEvent{
		Venue: models.RawVenue{Kind: models.VenueText, Text: "Blue Note"},
	}

	evt, err := Normalize(raw, "delhi", "all")
	require.NoError(t, err)

	assert.Equal(t, DefaultName, evt.Name)
	assert.Equal(t, time.Now().Format("2006-01-02"), evt.Date)
	assert.Equal(t, "Blue Note", evt.Venue)
	assert.Equal(t, "Free", evt.Price)
	assert.Equal(t, "#", evt.URL)
}

func TestNormalizeDateFallbacks(t *testing.T) {
	withStart := models.RawEvent{Title: "X", StartDate: "2024-05-01", When: "Sat, May 4"}
	evt, err := Normalize(withStart, "pune", "all")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", evt.Date)

	withWhen := models.RawEvent{Title: "X", When: "Sat, May 4"}
	evt, err = Normalize(withWhen, "pune", "all")
	require.NoError(t, err)
	assert.Equal(t, "Sat, May 4", evt.Date)
}

func TestNormalizeCategorySelection(t *testing.T) {
	tests := []struct {
		name      string
		raw       models.RawEvent
		requested string
		expected  string
	}{
		{
			"requested category wins",
			models.RawEvent{Title: "Live Jazz Night Concert"},
			"Nightlife",
			"Nightlife",
		},
		{
			"all is treated as no request",
			models.RawEvent{Title: "Live Jazz Night Concert"},
			"all",
			"Music",
		},
		{
			"source category beats inference",
			models.RawEvent{Title: "Live Jazz Night Concert", Category: "Culture"},
			"",
			"Culture",
		},
		{
			"keyword inference from description",
			models.RawEvent{Title: "Sunday Special", Description: "Wine tasting with local chefs"},
			"all",
			"Food",
		},
		{
			"first matching category wins",
			models.RawEvent{Title: "Music Tech Expo"},
			"all",
			"Technology",
		},
		{
			"no keyword match falls back",
			models.RawEvent{Title: "Sunday Brunch"},
			"all",
			DefaultCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := Normalize(tt.raw, "hyderabad", tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, evt.Category)
		})
	}
}

func TestNormalizeURLFallsBackToTicketLink(t *testing.T) {
	raw := models.RawEvent{Title: "X", TicketLink: "https://tickets.example.com/x"}
	evt, err := Normalize(raw, "chennai", "all")
	require.NoError(t, err)
	assert.Equal(t, "https://tickets.example.com/x", evt.URL)
}

func TestNormalizeSanitizesFields(t *testing.T) {
	raw := models.RawEvent{
		Title:       "Messy\n\tTitle",
		StartDate:   "2024-01-01",
		Description: "with  extra   spaces",
	}
	evt, err := Normalize(raw, "bangalore", "all")
	require.NoError(t, err)
	assert.Equal(t, "Messy Title", evt.Name)
	assert.Equal(t, "with extra spaces", evt.Description)
}
