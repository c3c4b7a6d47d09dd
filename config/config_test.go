package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Address)
	assert.Equal(t, "web/templates/*.html", cfg.Server.TemplatesGlob)
	assert.Equal(t, 50, cfg.DB.MaxOpenConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.Elastic.Enabled)
	assert.Equal(t, "events", cfg.Elastic.Index)
	assert.Equal(t, "https://serpapi.com/search", cfg.Serp.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Scraper.Timeout)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "0 2 * * *", cfg.Scheduler.Cron)
	assert.Equal(t, 3*time.Second, cfg.Scheduler.CityDelay)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("EVENTSCOUT_SERVER_ADDRESS", "127.0.0.1:8080")
	t.Setenv("EVENTSCOUT_SCHEDULER_ENABLED", "false")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address)
	assert.False(t, cfg.Scheduler.Enabled)
}
