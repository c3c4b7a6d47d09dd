package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// WebScrapeSource scrapes public listing pages as a fallback when the search
// API yields nothing. It tries Eventbrite and Meetup and concatenates the
// results; a failure on one site does not abort the other.
type WebScrapeSource struct {
	client *resty.Client
}

// NewWebScrapeSource creates the HTML scrape fallback source.
func NewWebScrapeSource(cfg config.ScraperConfig) *WebScrapeSource {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent)

	return &WebScrapeSource{client: client}
}

// Name implements EventSource.
func (s *WebScrapeSource) Name() string {
	return "webscrape"
}

// Fetch implements EventSource.
func (s *WebScrapeSource) Fetch(ctx context.Context, city, category string) ([]models.RawEvent, error) {
	var all []models.RawEvent

	eventbrite, err := s.scrapeEventbrite(ctx, city, category)
	if err != nil {
		log.Warn().Err(err).Str("city", city).Msg("Eventbrite scrape failed")
	}
	all = append(all, eventbrite...)

	meetup, err := s.scrapeMeetup(ctx, city, category)
	if err != nil {
		log.Warn().Err(err).Str("city", city).Msg("Meetup scrape failed")
	}
	all = append(all, meetup...)

	return all, nil
}

func (s *WebScrapeSource) scrapeEventbrite(ctx context.Context, city, category string) ([]models.RawEvent, error) {
	url := fmt.Sprintf("https://www.eventbrite.com/d/india--%s/%s/", strings.ToLower(city), category)
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseEventbrite(doc), nil
}

func (s *WebScrapeSource) scrapeMeetup(ctx context.Context, city, category string) ([]models.RawEvent, error) {
	url := fmt.Sprintf("https://www.meetup.com/find/?location=in--%s&keywords=%s", city, category)
	doc, err := s.fetchDocument(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseMeetup(doc), nil
}

func (s *WebScrapeSource) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch %s", url)
	}
	if resp.IsError() {
		return nil, errors.Errorf("%s returned %s", url, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse HTML")
	}
	return doc, nil
}

// parseEventbrite extracts raw events from an Eventbrite search result page.
// Cards without a name are dropped.
func parseEventbrite(doc *goquery.Document) []models.RawEvent {
	var events []models.RawEvent

	doc.Find(".search-event-card-wrapper").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find(".eds-event-card__formatted-name--is-clamped").Text())
		if name == "" {
			name = strings.TrimSpace(card.Find("h2").Text())
		}
		if name == "" {
			return
		}

		venueText := strings.TrimSpace(card.Find(".card-text--truncated__one").Text())
		link, _ := card.Find("a").Attr("href")

		events = append(events, models.RawEvent{
			Title: name,
			When:  strings.TrimSpace(card.Find(".eds-event-card-content__sub-title").Text()),
			Venue: venueShape(venueText),
			Link:  link,
		})
	})

	return events
}

// parseMeetup extracts raw events from a Meetup search result page.
func parseMeetup(doc *goquery.Document) []models.RawEvent {
	var events []models.RawEvent

	doc.Find("[data-event-label]").Each(func(_ int, card *goquery.Selection) {
		name := strings.TrimSpace(card.Find("h3").Text())
		if name == "" {
			return
		}

		when, ok := card.Find("time").Attr("datetime")
		if !ok || when == "" {
			when = strings.TrimSpace(card.Find("time").Text())
		}

		venueText := strings.TrimSpace(card.Find(".text-gray-7").Text())
		link, _ := card.Find("a").Attr("href")

		events = append(events, models.RawEvent{
			Title: name,
			When:  when,
			Venue: venueShape(venueText),
			Link:  link,
		})
	})

	return events
}

func venueShape(text string) models.RawVenue {
	if text == "" {
		return models.RawVenue{Kind: models.VenueNone}
	}
	return models.RawVenue{Kind: models.VenueText, Text: text}
}
