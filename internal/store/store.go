// Package store defines the tabular persistence contract for events and its
// Postgres-backed implementation. Each city is an isolated partition of rows
// under a fixed 9-column header.
package store

import "context"

// Column names of the header contract. Writers address row fields by these
// names, never by position.
const (
	ColName      = "Event Name"
	ColDate      = "Date"
	ColVenue     = "Venue"
	ColCity      = "City"
	ColCategory  = "Category"
	ColURL       = "URL"
	ColStatus    = "Status"
	ColScrapedAt = "Scraped At"
	ColUniqueID  = "Unique ID"
)

// Header lists the columns in contract order.
var Header = []string{
	ColName, ColDate, ColVenue, ColCity,
	ColCategory, ColURL, ColStatus, ColScrapedAt, ColUniqueID,
}

// Row is a single persisted event row. Set only mutates the in-memory copy;
// Save persists it.
type Row interface {
	Get(column string) string
	Set(column, value string)
	Save(ctx context.Context) error
}

// Partition is one city's row collection.
type Partition interface {
	City() string
	Rows(ctx context.Context) ([]Row, error)
	Append(ctx context.Context, fields map[string]string) error
}

// Store hands out per-city partitions, creating them on first use.
type Store interface {
	Partition(ctx context.Context, city string) (Partition, error)
}
