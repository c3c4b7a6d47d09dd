// Package source fetches raw event listings for a city from external
// providers. Sources produce untrusted records; normalization happens
// downstream.
package source

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// EventSource produces a batch of raw events for a city and category. An
// empty batch is a valid result, not an error.
type EventSource interface {
	Name() string
	Fetch(ctx context.Context, city, category string) ([]models.RawEvent, error)
}

// Multiplexer tries its sources in order and returns the first non-empty
// batch. A failing source is logged and skipped; only when every source
// comes up empty does the multiplexer return an empty batch.
type Multiplexer struct {
	sources []EventSource
}

// NewMultiplexer creates a multiplexer over the given sources, in priority order.
func NewMultiplexer(sources ...EventSource) *Multiplexer {
	return &Multiplexer{sources: sources}
}

// Name implements EventSource.
func (m *Multiplexer) Name() string {
	return "multiplex"
}

// Fetch implements EventSource.
func (m *Multiplexer) Fetch(ctx context.Context, city, category string) ([]models.RawEvent, error) {
	for _, s := range m.sources {
		events, err := s.Fetch(ctx, city, category)
		if err != nil {
			log.Warn().Err(err).
				Str("source", s.Name()).
				Str("city", city).
				Msg("Event source failed, trying next")
			continue
		}
		if len(events) > 0 {
			log.Info().
				Str("source", s.Name()).
				Str("city", city).
				Int("count", len(events)).
				Msg("Fetched events")
			return events, nil
		}
		log.Info().Str("source", s.Name()).Str("city", city).Msg("No events found, trying next source")
	}
	return nil, nil
}
