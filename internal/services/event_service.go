package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kirtan-gupta/Pixie-EventScout/internal/cache"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/identity"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/metrics"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/normalize"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/search"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/source"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/store"
)

// EventService owns the fetch/normalize/reconcile pipeline and all reads of
// persisted events. Reconciliation is best-effort: a bad record or a failed
// row write is logged and skipped, never aborting the rest of the batch.
type EventService struct {
	store    store.Store
	source   source.EventSource
	cache    *cache.RedisCache
	search   *search.ElasticClient
	metrics  *metrics.Metrics
	cacheTTL time.Duration

	now func() time.Time

	mu        sync.Mutex
	cityLocks map[string]*sync.Mutex
}

// NewEventService creates a new event service
func NewEventService(
	st store.Store,
	src source.EventSource,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	metricsCollector *metrics.Metrics,
	cacheTTL time.Duration,
) *EventService {
	return &EventService{
		store:     st,
		source:    src,
		cache:     redisCache,
		search:    elasticClient,
		metrics:   metricsCollector,
		cacheTTL:  cacheTTL,
		now:       time.Now,
		cityLocks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding a city's reconciliation. Overlapping
// triggers for the same city (interactive scrape racing the daily job)
// serialize here instead of interleaving row writes.
func (s *EventService) lockFor(city string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.cityLocks[city]
	if !ok {
		l = &sync.Mutex{}
		s.cityLocks[city] = l
	}
	return l
}

// FetchAndReconcile pulls a fresh batch for the city, normalizes it, and
// reconciles it into the store. Normalization failures skip the record;
// fetch failures yield an empty batch and a zero result.
func (s *EventService) FetchAndReconcile(ctx context.Context, city, category string) ([]models.Event, models.ReconcileResult) {
	runID := uuid.New()
	log.Info().
		Str("run_id", runID.String()).
		Str("city", city).
		Str("category", category).
		Msg("Fetching events")

	raws, err := s.source.Fetch(ctx, city, category)
	if err != nil {
		log.Error().Err(err).Str("city", city).Msg("Failed to fetch events")
		s.metrics.RecordError("fetch")
		return nil, models.ReconcileResult{}
	}
	s.metrics.RecordSuccess("fetch")
	s.metrics.IncrementCounterBy("events_fetched", int64(len(raws)))

	var skipped []models.SkippedEvent
	batch := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		evt, err := normalize.Normalize(raw, city, category)
		if err != nil {
			log.Warn().Err(err).Str("title", raw.Title).Msg("Skipping malformed event")
			skipped = append(skipped, models.SkippedEvent{Name: raw.Title, Reason: err.Error()})
			continue
		}
		batch = append(batch, evt)
	}

	if len(batch) == 0 {
		return batch, models.ReconcileResult{Skipped: skipped}
	}

	result := s.Reconcile(ctx, city, batch)
	result.Skipped = append(skipped, result.Skipped...)

	log.Info().
		Str("run_id", runID.String()).
		Str("city", city).
		Int("added", result.Added).
		Int("updated", result.Updated).
		Int("expired", result.Expired).
		Int("skipped", len(result.Skipped)).
		Msg("Reconciliation complete")

	return batch, result
}

// Reconcile merges a normalized batch into the city's partition: known keys
// update their row in place, new keys append, and a final sweep expires rows
// whose date has passed. A catastrophic store failure logs and returns a
// zero result; partially applied batches leave a consistent prefix behind.
func (s *EventService) Reconcile(ctx context.Context, city string, events []models.Event) models.ReconcileResult {
	lock := s.lockFor(city)
	lock.Lock()
	defer lock.Unlock()

	started := s.now()
	var result models.ReconcileResult

	partition, err := s.store.Partition(ctx, city)
	if err != nil {
		log.Error().Err(err).Str("city", city).Msg("Failed to open store partition")
		s.metrics.RecordError("reconcile")
		return models.ReconcileResult{}
	}

	rows, err := partition.Rows(ctx)
	if err != nil {
		log.Error().Err(err).Str("city", city).Msg("Failed to list existing rows")
		s.metrics.RecordError("reconcile")
		return models.ReconcileResult{}
	}
	log.Info().Str("city", city).Int("existing", len(rows)).Msg("Loaded existing events")

	existing := make(map[string]store.Row, len(rows))
	for _, row := range rows {
		key := row.Get(store.ColUniqueID)
		if key == "" {
			key = identity.FromRow(row.Get(store.ColName), row.Get(store.ColDate), row.Get(store.ColVenue))
		}
		existing[key] = row
	}

	now := s.now()
	for _, evt := range events {
		key := identity.FromEvent(evt.Name, evt.Date, evt.Venue)
		status := string(DetermineStatus(evt.Date, now))

		if row, ok := existing[key]; ok {
			row.Set(store.ColName, evt.Name)
			row.Set(store.ColDate, evt.Date)
			row.Set(store.ColVenue, evt.Venue)
			row.Set(store.ColCategory, evt.Category)
			row.Set(store.ColURL, evt.URL)
			row.Set(store.ColStatus, status)
			row.Set(store.ColScrapedAt, evt.ScrapedAt)
			if err := row.Save(ctx); err != nil {
				log.Error().Err(err).Str("event", evt.Name).Msg("Failed to update row")
				result.Skipped = append(result.Skipped, models.SkippedEvent{Name: evt.Name, Reason: err.Error()})
				continue
			}
			result.Updated++
		} else {
			fields := map[string]string{
				store.ColName:      evt.Name,
				store.ColDate:      evt.Date,
				store.ColVenue:     evt.Venue,
				store.ColCity:      evt.City,
				store.ColCategory:  evt.Category,
				store.ColURL:       evt.URL,
				store.ColStatus:    status,
				store.ColScrapedAt: evt.ScrapedAt,
				store.ColUniqueID:  key,
			}
			if err := partition.Append(ctx, fields); err != nil {
				log.Error().Err(err).Str("event", evt.Name).Msg("Failed to append row")
				result.Skipped = append(result.Skipped, models.SkippedEvent{Name: evt.Name, Reason: err.Error()})
				continue
			}
			result.Added++
		}

		if s.search.Enabled() {
			indexed := evt
			indexed.Status = status
			if err := s.search.IndexEvent(ctx, indexed, key); err != nil {
				log.Warn().Err(err).Str("event", evt.Name).Msg("Failed to index event")
			}
		}
	}

	result.Expired = s.sweepExpired(ctx, partition)

	if s.cache.Enabled() {
		if err := s.cache.Delete(ctx, cache.GetCityEventsCacheKey(city)); err != nil {
			log.Warn().Err(err).Str("city", city).Msg("Failed to invalidate cache")
		}
	}

	s.metrics.RecordSuccess("reconcile")
	s.metrics.IncrementCounterBy("events_added", int64(result.Added))
	s.metrics.IncrementCounterBy("events_updated", int64(result.Updated))
	s.metrics.IncrementCounterBy("events_expired", int64(result.Expired))
	s.metrics.RecordTimer("reconcile", time.Since(started).Milliseconds())

	return result
}

// sweepExpired flips rows whose date string sorts before today's ISO date to
// expired. Rows already expired are left alone; a failed save skips the row.
func (s *EventService) sweepExpired(ctx context.Context, partition store.Partition) int {
	rows, err := partition.Rows(ctx)
	if err != nil {
		log.Error().Err(err).Str("city", partition.City()).Msg("Failed to list rows for expiry sweep")
		return 0
	}

	today := s.now().Format("2006-01-02")
	expired := 0
	for _, row := range rows {
		date := row.Get(store.ColDate)
		if date == "" || date >= today || row.Get(store.ColStatus) == string(models.StatusExpired) {
			continue
		}
		row.Set(store.ColStatus, string(models.StatusExpired))
		if err := row.Save(ctx); err != nil {
			log.Error().Err(err).Str("event", row.Get(store.ColName)).Msg("Failed to expire row")
			continue
		}
		expired++
	}
	return expired
}

// EventsForCity returns the city's persisted events, consulting the cache
// first and falling back to a live fetch-and-reconcile when the partition is
// empty. The optional category filter is a case-insensitive substring match.
func (s *EventService) EventsForCity(ctx context.Context, city, category string) ([]models.Event, error) {
	var events []models.Event

	cacheKey := cache.GetCityEventsCacheKey(city)
	if s.cache.Enabled() {
		if err := s.cache.Get(ctx, cacheKey, &events); err == nil {
			return filterByCategory(events, category), nil
		}
	}

	events, err := s.eventsFromStore(ctx, city)
	if err != nil {
		return nil, err
	}

	if len(events) == 0 {
		log.Info().Str("city", city).Msg("No persisted events, fetching fresh")
		events, _ = s.FetchAndReconcile(ctx, city, category)
		return filterByCategory(events, category), nil
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, events, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("city", city).Msg("Failed to cache events")
		}
	}

	return filterByCategory(events, category), nil
}

// FetchPreview fetches and normalizes a batch without touching the store.
func (s *EventService) FetchPreview(ctx context.Context, city, category string) ([]models.Event, error) {
	raws, err := s.source.Fetch(ctx, city, category)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		evt, err := normalize.Normalize(raw, city, category)
		if err != nil {
			continue
		}
		events = append(events, evt)
	}
	return events, nil
}

// DashboardStats aggregates per-city counts for the dashboard. A city whose
// rows cannot be read contributes a zero entry instead of failing the page.
func (s *EventService) DashboardStats(ctx context.Context) ([]models.CityStats, models.DashboardTotals) {
	stats := make([]models.CityStats, 0, len(models.ScheduledCities))
	var totals models.DashboardTotals

	for _, city := range models.ScheduledCities {
		events, err := s.eventsFromStore(ctx, city)
		if err != nil {
			log.Error().Err(err).Str("city", city).Msg("Failed to load stats")
			stats = append(stats, models.CityStats{City: city, LastUpdated: "Error"})
			continue
		}

		cs := models.CityStats{City: city, TotalEvents: len(events), LastUpdated: "Never"}
		for _, evt := range events {
			switch evt.Status {
			case string(models.StatusUpcoming), string(models.StatusToday):
				cs.UpcomingEvents++
			case string(models.StatusExpired):
				cs.ExpiredEvents++
			}
		}
		if len(events) > 0 && events[0].ScrapedAt != "" {
			cs.LastUpdated = events[0].ScrapedAt
		}

		stats = append(stats, cs)
		totals.TotalEvents += cs.TotalEvents
		totals.TotalUpcoming += cs.UpcomingEvents
		totals.TotalExpired += cs.ExpiredEvents
	}

	return stats, totals
}

// eventsFromStore reads a city's partition into canonical events, applying
// the display defaults for missing stored fields.
func (s *EventService) eventsFromStore(ctx context.Context, city string) ([]models.Event, error) {
	partition, err := s.store.Partition(ctx, city)
	if err != nil {
		return nil, err
	}
	rows, err := partition.Rows(ctx)
	if err != nil {
		return nil, err
	}

	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, rowToEvent(row, city))
	}
	return events, nil
}

func rowToEvent(row store.Row, city string) models.Event {
	evt := models.Event{
		Name:      row.Get(store.ColName),
		Date:      row.Get(store.ColDate),
		Venue:     row.Get(store.ColVenue),
		City:      row.Get(store.ColCity),
		Category:  row.Get(store.ColCategory),
		URL:       row.Get(store.ColURL),
		Status:    row.Get(store.ColStatus),
		ScrapedAt: row.Get(store.ColScrapedAt),
	}
	if evt.Name == "" {
		evt.Name = "Unknown"
	}
	if evt.Date == "" {
		evt.Date = "Unknown"
	}
	if evt.Venue == "" {
		evt.Venue = "Unknown"
	}
	if evt.City == "" {
		evt.City = city
	}
	if evt.Category == "" {
		evt.Category = "General"
	}
	if evt.Status == "" {
		evt.Status = string(models.StatusUnknown)
	}
	return evt
}

func filterByCategory(events []models.Event, category string) []models.Event {
	if category == "" || strings.EqualFold(category, "all") {
		return events
	}

	needle := strings.ToLower(category)
	filtered := make([]models.Event, 0, len(events))
	for _, evt := range events {
		if strings.Contains(strings.ToLower(evt.Category), needle) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// dateLayouts are tried in order when deriving status from an event's date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// DetermineStatus derives the lifecycle status from an event's date string:
// before today is expired, today is today, after is upcoming, and anything
// unparseable is unknown.
func DetermineStatus(dateStr string, now time.Time) models.Status {
	var eventDate time.Time
	parsed := false
	for _, layout := range dateLayouts {
		if d, err := time.ParseInLocation(layout, strings.TrimSpace(dateStr), now.Location()); err == nil {
			eventDate = d
			parsed = true
			break
		}
	}
	if !parsed {
		return models.StatusUnknown
	}

	eventDay := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch {
	case eventDay.Before(today):
		return models.StatusExpired
	case eventDay.Equal(today):
		return models.StatusToday
	default:
		return models.StatusUpcoming
	}
}
