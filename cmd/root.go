package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eventscout",
	Short: "City event scraper and reconciliation service",
	Long: `A service that fetches event listings for cities from a search API
(with an HTML scrape fallback), normalizes and deduplicates them, persists
them per city, and serves them over a web UI and JSON API.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := cmd.Help(); err != nil {
			log.Error().Err(err).Msg("Failed to display help")
		}
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize()
}
