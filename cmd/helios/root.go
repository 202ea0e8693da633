package main

import (
	"log/slog"

	"github.com/UnknownOlympus/helios/internal/config"
	"github.com/UnknownOlympus/helios/internal/geocoding"
	"github.com/UnknownOlympus/helios/internal/metrics"
	"github.com/UnknownOlympus/helios/internal/service"
	"github.com/UnknownOlympus/helios/internal/solarapi"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "helios",
		Short:         "Solar potential map backed by the Google Solar API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath), newInspectCmd(&configPath))

	return root
}

// buildSolarService assembles the click pipeline from configuration.
func buildSolarService(cfg *config.Config, logger *slog.Logger, appMetrics *metrics.Metrics) (*service.SolarService, error) {
	fetcher, err := solarapi.New(solarapi.Options{
		APIKey:    cfg.Solar.APIKey,
		BaseURL:   cfg.Solar.BaseURL,
		RateLimit: cfg.Solar.RateLimit,
		Timeout:   cfg.Solar.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	// Create the reverse geocoder using factory pattern based on configuration
	geoProvider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.Geocoder.Provider),
		APIKey:    cfg.Geocoder.APIKey,
		RateLimit: cfg.Geocoder.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return service.NewSolarService(logger, fetcher, geoProvider, appMetrics, cfg.Solar.Timeout), nil
}
