package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kirtan-gupta/Pixie-EventScout/config"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/cache"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/metrics"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/search"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/services"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/source"
	"github.com/kirtan-gupta/Pixie-EventScout/internal/store"
)

var (
	scrapeCity     string
	scrapeCategory string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Fetch and reconcile events for a single city",
	Long:  `Run one fetch and reconcile cycle for a city, then exit. Useful for backfills and cron-less deployments.`,
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeCity, "city", "", "city to scrape (required)")
	scrapeCmd.Flags().StringVar(&scrapeCategory, "category", "all", "event category filter")
	scrapeCmd.MarkFlagRequired("city")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
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

	eventSource := source.NewMultiplexer(
		source.NewSerpAPISource(cfg.Serp, cfg.Scraper.Timeout),
		source.NewWebScrapeSource(cfg.Scraper),
	)

	eventService := services.NewEventService(
		eventStore, eventSource, redisCache, elasticClient, metrics.NewMetrics(), cfg.Redis.TTL)

	city := strings.TrimSpace(scrapeCity)
	events, result := eventService.FetchAndReconcile(ctx, city, scrapeCategory)

	fmt.Printf("Scraped %d events for %s: %d added, %d updated, %d expired, %d skipped\n",
		len(events), city, result.Added, result.Updated, result.Expired, len(result.Skipped))
	for _, skipped := range result.Skipped {
		fmt.Printf("  skipped %q: %s\n", skipped.Name, skipped.Reason)
	}

	return nil
}
