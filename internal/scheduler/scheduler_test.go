package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
)

type recordingRefresher struct {
	cities []string
	batch  []models.Event
}

func (r *recordingRefresher) FetchAndReconcile(ctx context.Context, city, category string) ([]models.Event, models.ReconcileResult) {
	r.cities = append(r.cities, city)
	return r.batch, models.ReconcileResult{}
}

func TestRefreshAllVisitsEveryCity(t *testing.T) {
	refresher := &recordingRefresher{batch: []models.Event{{Name: "X"}}}
	s := New(config.SchedulerConfig{CityDelay: time.Millisecond},
		refresher, []string{"Mumbai", "Delhi", "Bangalore"})

	s.RefreshAll(context.Background())

	assert.Equal(t, []string{"Mumbai", "Delhi", "Bangalore"}, refresher.cities)
}

func TestRefreshAllContinuesPastEmptyCities(t *testing.T) {
	// An empty batch for one city must not stop the pass.
	refresher := &recordingRefresher{}
	s := New(config.SchedulerConfig{CityDelay: time.Millisecond},
		refresher, []string{"Mumbai", "Delhi"})

	s.RefreshAll(context.Background())

	assert.Len(t, refresher.cities, 2)
}

func TestRefreshAllStopsOnCancel(t *testing.T) {
	refresher := &recordingRefresher{batch: []models.Event{{Name: "X"}}}
	s := New(config.SchedulerConfig{CityDelay: time.Second},
		refresher, []string{"Mumbai", "Delhi", "Bangalore"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.RefreshAll(ctx)

	// The first city runs, then the cancelled context wins the delay select.
	assert.Equal(t, []string{"Mumbai"}, refresher.cities)
}
