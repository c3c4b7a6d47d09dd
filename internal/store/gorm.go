package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// GormStore implements Store on a Postgres database, with the city column as
// the partition key.
type GormStore struct {
	db *gorm.DB
}

// Connect opens the database, configures the connection pool, and runs
// migrations. A connection failure here is fatal to the caller.
func Connect(cfg config.DatabaseConfig) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying DB connection")
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := models.SetupModels(db); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing database handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Partition returns the row collection for a city. Partitions exist
// implicitly; no DDL is needed per city.
func (s *GormStore) Partition(ctx context.Context, city string) (Partition, error) {
	return &gormPartition{db: s.db, city: city}, nil
}

type gormPartition struct {
	db   *gorm.DB
	city string
}

func (p *gormPartition) City() string {
	return p.city
}

func (p *gormPartition) Rows(ctx context.Context) ([]Row, error) {
	var records []models.EventRecord
	err := p.db.WithContext(ctx).
		Where("city = ?", p.city).
		Order("created_at").
		Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list rows")
	}

	rows := make([]Row, 0, len(records))
	for i := range records {
		rows = append(rows, &gormRow{db: p.db, record: &records[i]})
	}
	return rows, nil
}

func (p *gormPartition) Append(ctx context.Context, fields map[string]string) error {
	record := models.EventRecord{
		ID:        uuid.New(),
		City:      p.city,
		Name:      fields[ColName],
		Date:      fields[ColDate],
		Venue:     fields[ColVenue],
		Category:  fields[ColCategory],
		URL:       fields[ColURL],
		Status:    fields[ColStatus],
		ScrapedAt: fields[ColScrapedAt],
		UniqueID:  fields[ColUniqueID],
	}
	if city, ok := fields[ColCity]; ok && city != "" {
		record.City = city
	}

	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed to append row")
	}
	return nil
}

type gormRow struct {
	db     *gorm.DB
	record *models.EventRecord
}

func (r *gormRow) Get(column string) string {
	switch column {
	case ColName:
		return r.record.Name
	case ColDate:
		return r.record.Date
	case ColVenue:
		return r.record.Venue
	case ColCity:
		return r.record.City
	case ColCategory:
		return r.record.Category
	case ColURL:
		return r.record.URL
	case ColStatus:
		return r.record.Status
	case ColScrapedAt:
		return r.record.ScrapedAt
	case ColUniqueID:
		return r.record.UniqueID
	}
	return ""
}

func (r *gormRow) Set(column, value string) {
	switch column {
	case ColName:
		r.record.Name = value
	case ColDate:
		r.record.Date = value
	case ColVenue:
		r.record.Venue = value
	case ColCity:
		r.record.City = value
	case ColCategory:
		r.record.Category = value
	case ColURL:
		r.record.URL = value
	case ColStatus:
		r.record.Status = value
	case ColScrapedAt:
		r.record.ScrapedAt = value
	case ColUniqueID:
		r.record.UniqueID = value
	}
}

func (r *gormRow) Save(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Save(r.record).Error; err != nil {
		return errors.Wrap(err, "failed to save row")
	}
	return nil
}
