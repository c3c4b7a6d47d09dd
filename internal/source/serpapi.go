package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// SerpAPISource queries the google_events engine of the SerpAPI search
// service. It is the primary event source.
type SerpAPISource struct {
	client *resty.Client
	apiKey string
}

// NewSerpAPISource creates the search API source.
func NewSerpAPISource(cfg config.SerpConfig, timeout time.Duration) *SerpAPISource {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout)

	return &SerpAPISource{
		client: client,
		apiKey: cfg.APIKey,
	}
}

// Name implements EventSource.
func (s *SerpAPISource) Name() string {
	return "serpapi"
}

// Fetch implements EventSource.
func (s *SerpAPISource) Fetch(ctx context.Context, city, category string) ([]models.RawEvent, error) {
	if s.apiKey == "" {
		return nil, errors.New("search API key not configured")
	}

	query := fmt.Sprintf("events in %s", city)
	if category != "" && category != "all" {
		query = fmt.Sprintf("%s events in %s", category, city)
	}

	var payload serpResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  "google_events",
			"q":       query,
			"hl":      "en",
			"api_key": s.apiKey,
		}).
		SetResult(&payload).
		Get("")
	if err != nil {
		return nil, errors.Wrap(err, "search API request failed")
	}
	if resp.IsError() {
		return nil, errors.Errorf("search API returned %s", resp.Status())
	}

	events := make([]models.RawEvent, 0, len(payload.EventsResults))
	for _, se := range payload.EventsResults {
		events = append(events, se.toRaw())
	}
	return events, nil
}

type serpResponse struct {
	EventsResults []serpEvent `json:"events_results"`
}

// serpEvent mirrors one events_results entry. Address, venue and ticket_info
// arrive in unpredictable shapes, so they stay raw until decoded tolerantly.
type serpEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        struct {
		StartDate string `json:"start_date"`
		When      string `json:"when"`
	} `json:"date"`
	Address    json.RawMessage `json:"address"`
	Venue      json.RawMessage `json:"venue"`
	Link       string          `json:"link"`
	TicketInfo json.RawMessage `json:"ticket_info"`
	Image      string          `json:"image"`
}

func (se serpEvent) toRaw() models.RawEvent {
	ticketLink, price := decodeTicketInfo(se.TicketInfo)

	return models.RawEvent{
		Title:       se.Title,
		Description: se.Description,
		StartDate:   se.Date.StartDate,
		When:        se.Date.When,
		Venue:       decodeVenue(se.Address, se.Venue),
		Link:        se.Link,
		TicketLink:  ticketLink,
		Price:       price,
		Image:       se.Image,
	}
}

// decodeVenue classifies the venue data into an explicit shape. Recognized
// shapes, first match wins: address as a plain string, address as a string
// list, a venue object with name or address, address as a wrapped value list.
func decodeVenue(address, venueRaw json.RawMessage) models.RawVenue {
	if len(address) > 0 {
		var text string
		if err := json.Unmarshal(address, &text); err == nil {
			return models.RawVenue{Kind: models.VenueText, Text: text}
		}

		var parts []string
		if err := json.Unmarshal(address, &parts); err == nil {
			return models.RawVenue{Kind: models.VenueParts, Parts: parts}
		}
	}

	if len(venueRaw) > 0 {
		var v struct {
			Name    string `json:"name"`
			Address string `json:"address"`
		}
		if err := json.Unmarshal(venueRaw, &v); err == nil && (v.Name != "" || v.Address != "") {
			return models.RawVenue{Kind: models.VenueNamed, Name: v.Name, Address: v.Address}
		}
	}

	if len(address) > 0 {
		var wrapped struct {
			Values []models.WrappedValue `json:"values"`
		}
		if err := json.Unmarshal(address, &wrapped); err == nil && len(wrapped.Values) > 0 {
			return models.RawVenue{Kind: models.VenueWrapped, Values: wrapped.Values}
		}
	}

	return models.RawVenue{Kind: models.VenueNone}
}

// decodeTicketInfo tolerates both the object and list forms ticket_info
// shows up in.
func decodeTicketInfo(raw json.RawMessage) (link, price string) {
	if len(raw) == 0 {
		return "", ""
	}

	var ti struct {
		Link  string `json:"link"`
		Price string `json:"price"`
	}
	if err := json.Unmarshal(raw, &ti); err == nil {
		return ti.Link, ti.Price
	}

	var list []struct {
		Link  string `json:"link"`
		Price string `json:"price"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].Link, list[0].Price
	}

	return "", ""
}
