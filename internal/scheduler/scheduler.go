// Package scheduler runs the daily multi-city refresh.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

// Refresher triggers a fetch-and-reconcile for one city.
type Refresher interface {
	FetchAndReconcile(ctx context.Context, city, category string) ([]models.Event, models.ReconcileResult)
}

// Scheduler refreshes a fixed set of cities on a cron schedule, strictly
// sequentially with a pause between cities to stay polite to the upstream
// source.
type Scheduler struct {
	cfg       config.SchedulerConfig
	refresher Refresher
	cities    []string
}

// New creates a scheduler over the given cities.
func New(cfg config.SchedulerConfig, refresher Refresher, cities []string) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		refresher: refresher,
		cities:    cities,
	}
}

// Run starts the cron job and blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create scheduler")
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(s.cfg.Cron, false),
		gocron.NewTask(func() {
			s.RefreshAll(ctx)
		}),
	)
	if err != nil {
		return errors.Wrap(err, "failed to schedule refresh job")
	}

	log.Info().Str("cron", s.cfg.Cron).Strs("cities", s.cities).Msg("Starting scheduled refresh job")
	scheduler.Start()

	<-ctx.Done()

	return scheduler.Shutdown()
}

// RefreshAll runs one refresh pass over every city. A failure for one city
// is logged and does not block the remaining cities.
func (s *Scheduler) RefreshAll(ctx context.Context) {
	log.Info().Msg("Running scheduled scraping")

	for _, city := range s.cities {
		batch, result := s.refresher.FetchAndReconcile(ctx, city, "all")
		if len(batch) == 0 {
			log.Warn().Str("city", city).Msg("No events found")
		} else {
			log.Info().
				Str("city", city).
				Int("added", result.Added).
				Int("updated", result.Updated).
				Msg("City refreshed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("Scheduled scraping cancelled")
			return
		case <-time.After(s.cfg.CityDelay):
		}
	}

	log.Info().Msg("Scheduled scraping completed")
}
