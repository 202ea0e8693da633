package main

import (
	"encoding/json"
	"fmt"

	"github.com/UnknownOlympus/helios/internal/config"
	"github.com/UnknownOlympus/helios/internal/metrics"
	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newInspectCmd(configPath *string) *cobra.Command {
	var coord models.Coordinate

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run a single click and print the resulting scene as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			logger := setupLogger(cfg.Env, cmd.ErrOrStderr())
			appMetrics := metrics.NewMetrics(prometheus.NewRegistry())

			solarService, err := buildSolarService(cfg, logger, appMetrics)
			if err != nil {
				return fmt.Errorf("failed to build solar service: %w", err)
			}

			sessions := session.NewRegistry(cfg.Session.TTL, cfg.Session.MaxDiagnostics, logger, appMetrics)
			sess := sessions.Create()

			outcome := solarService.FetchAndRender(cmd.Context(), sess, coord)

			view := sess.View()
			view.Outcome = string(outcome)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err = enc.Encode(view); err != nil {
				return fmt.Errorf("failed to encode scene: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&coord.Latitude, "lat", 0, "Latitude of the click")
	cmd.Flags().Float64Var(&coord.Longitude, "lng", 0, "Longitude of the click")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}
