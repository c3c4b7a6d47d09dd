package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a persisted event, derived from its date.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusToday    Status = "today"
	StatusExpired  Status = "expired"
	StatusUnknown  Status = "unknown"
)

// Cities served by the UI and API.
var Cities = []string{"Mumbai", "Delhi", "Bangalore", "Chennai", "Hyderabad", "Kolkata", "Pune"}

// ScheduledCities is the subset refreshed by the daily job.
var ScheduledCities = []string{"Mumbai", "Delhi", "Bangalore", "Chennai", "Hyderabad"}

// Event is the canonical, sanitized record built from one raw source record.
// It is constructed fresh on every fetch and only becomes mutable state once
// reconciled into the store.
type Event struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Venue       string `json:"venue"`
	City        string `json:"city"`
	Category    string `json:"category"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	ScrapedAt   string `json:"scrapedAt"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
	Image       string `json:"image,omitempty"`
}

// EventRecord is a persisted event row. City is the partition key; UniqueID
// is the deduplication key derived from name, date and venue.
type EventRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	City      string         `gorm:"not null;index:idx_city_unique_id" json:"city"`
	Name      string         `gorm:"not null" json:"name"`
	Date      string         `json:"date"`
	Venue     string         `json:"venue"`
	Category  string         `json:"category"`
	URL       string         `json:"url"`
	Status    string         `json:"status"`
	ScrapedAt string         `json:"scraped_at"`
	UniqueID  string         `gorm:"index:idx_city_unique_id" json:"unique_id"`
}

// VenueKind tags the shape a source delivered venue data in. Shape dispatch
// happens once, at the source adapter, so everything downstream works with an
// explicit variant instead of re-inspecting raw JSON.
type VenueKind int

const (
	VenueNone VenueKind = iota
	VenueText
	VenueParts
	VenueNamed
	VenueWrapped
)

// WrappedValue mirrors the protobuf-style wrapper some sources leak, where
// each list element carries its text under a string_value field.
type WrappedValue struct {
	StringValue string `json:"string_value"`
}

// RawVenue is the tagged union of venue shapes seen in the wild. Exactly the
// fields for its Kind are populated.
type RawVenue struct {
	Kind    VenueKind
	Text    string         // VenueText: a plain address string
	Parts   []string       // VenueParts: address as a list of strings
	Name    string         // VenueNamed: venue object's name
	Address string         // VenueNamed: venue object's address
	Values  []WrappedValue // VenueWrapped: wrapped value list
}

// RawEvent is one untrusted record as produced by an EventSource, before
// normalization. Every field may be empty.
type RawEvent struct {
	Title       string
	Description string
	Category    string
	StartDate   string
	When        string
	Venue       RawVenue
	Link        string
	TicketLink  string
	Price       string
	Image       string
}

// ReconcileResult reports what a reconciliation run changed, plus the records
// it had to skip and why.
type ReconcileResult struct {
	Added   int            `json:"added"`
	Updated int            `json:"updated"`
	Expired int            `json:"expired"`
	Skipped []SkippedEvent `json:"skipped,omitempty"`
}

// SkippedEvent names a record dropped during a batch, with the reason.
type SkippedEvent struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// CityStats holds per-city aggregates for the dashboard.
type CityStats struct {
	City           string `json:"city"`
	TotalEvents    int    `json:"total_events"`
	UpcomingEvents int    `json:"upcoming_events"`
	ExpiredEvents  int    `json:"expired_events"`
	LastUpdated    string `json:"last_updated"`
}

// DashboardTotals aggregates CityStats across all cities.
type DashboardTotals struct {
	TotalEvents   int `json:"total_events"`
	TotalUpcoming int `json:"total_upcoming"`
	TotalExpired  int `json:"total_expired"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}
	return nil
}
