package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/api"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/cache"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/metrics"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/models"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/scheduler"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/search"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/services"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/source"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server and daily refresh job",
	Long:  `Start the HTTP server serving the UI and JSON API, plus the scheduled daily refresh over the configured cities.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eventStore, err := store.Connect(cfg.DB)
	if err != nil {
		return err
	}
	defer eventStore.Close()

	redisCache, err := cache.NewRedisCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis cache, continuing without caching")
	}

	elasticClient, err := search.NewElasticClient(cfg.Elastic)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Elasticsearch client, continuing without search indexing")
	}

	metricsCollector := metrics.NewMetrics()

	eventSource := source.NewMultiplexer(
		source.NewSerpAPISource(cfg.Serp, cfg.Scraper.Timeout),
		source.NewWebScrapeSource(cfg.Scraper),
	)

	eventService := services.NewEventService(
		eventStore, eventSource, redisCache, elasticClient, metricsCollector, cfg.Redis.TTL)

	server := api.NewServer(cfg, eventService, metricsCollector)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	if cfg.Scheduler.Enabled {
		refreshScheduler := scheduler.New(cfg.Scheduler, eventService, models.ScheduledCities)
		g.Go(func() error {
			return refreshScheduler.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}

	log.Info().Msg("Shutting down")
	return nil
}
