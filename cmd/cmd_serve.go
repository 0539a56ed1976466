// Copyright 2026 The Rumbo Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/rumbo/track"
	"github.com/spf13/cobra"
)

var serveOptions = struct {
	Addr         string
	Geocoder     string
	NominatimURL string
	UserAgent    string
	TraceHTTP    bool
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local tracking web server",
	Long: `Serves the tracking page and its JSON API. The location history lives in an
in-memory database and is discarded when the process exits.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Empty DSN opens an in-memory database: the history is
		// session-scoped by construction, nothing touches disk.
		db, err := sql.Open("duckdb", "")
		if err != nil {
			return fmt.Errorf("opening in-memory database: %w", err)
		}
		defer db.Close()

		repo := track.NewHistoryRepository(db)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating history schema: %w", err)
		}

		geocoder, err := buildGeocoder()
		if err != nil {
			return err
		}

		tracker := track.NewTracker(repo, geocoder)
		server := track.NewServer(tracker, repo)

		fmt.Println("📍 Tracking server starting...")
		fmt.Printf("🌐 Open http://%s in your browser\n", serveOptions.Addr)
		fmt.Println("🔒 Local only - history is discarded when the process exits")

		return server.Run(serveOptions.Addr)
	},
}

func buildGeocoder() (track.ReverseGeocoder, error) {
	userAgent := serveOptions.UserAgent
	if userAgent == "" {
		userAgent = "rumbo/" + Version
	}

	switch serveOptions.Geocoder {
	case "nominatim":
		fmt.Println("📍 Geocoding: Nominatim")

		return track.NewNominatimGeocoder(&track.NominatimOptions{
			BaseURL:         serveOptions.NominatimURL,
			UserAgent:       userAgent,
			EnableHTTPTrace: serveOptions.TraceHTTP,
		}), nil
	case "google":
		apiKey := os.Getenv("GOOGLE_MAPS_API_KEY")
		if apiKey == "" {
			log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

			var err error

			apiKey, err = track.APIKeyFromADC(context.Background())
			if err != nil {
				return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is not set and ADC lookup failed: %w", err)
			}

			log.Println("✅ Successfully retrieved Google Maps API Key via ADC")
		}

		fmt.Println("📍 Geocoding: Google Maps")

		return track.NewGoogleMapsGeocoder(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown geocoder %q (expected nominatim or google)", serveOptions.Geocoder)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveOptions.Addr, "addr", "localhost:8080", "address to listen on")
	serveCmd.Flags().StringVar(&serveOptions.Geocoder, "geocoder", "nominatim", "reverse geocoding provider (nominatim|google)")
	serveCmd.Flags().StringVar(&serveOptions.NominatimURL, "nominatim-url", track.DefaultNominatimURL, "base URL of the Nominatim service")
	serveCmd.Flags().StringVar(&serveOptions.UserAgent, "user-agent", "", "User-Agent for geocoding requests (default rumbo/<version>)")
	serveCmd.Flags().BoolVar(&serveOptions.TraceHTTP, "trace-http", false, "log geocoding HTTP requests and responses to stderr")

	rootCmd.AddCommand(serveCmd)
}
