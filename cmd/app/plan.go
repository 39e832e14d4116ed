package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/metrics"
	"grassmap/internal/services"
	"grassmap/pkg/logger"
	"grassmap/pkg/utils"
)

// newPlanCmd runs one chat turn outside the server and prints the resulting
// plan, geocoded when a provider is configured.
func newPlanCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration
	var provider string

	cmd := &cobra.Command{
		Use:   "plan <prompt>",
		Short: "Ask for an itinerary and print the parsed plan as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if cfg.ChatAPIKey() == "" {
				return fmt.Errorf("%s API key is not set", cfg.ChatProvider)
			}
			client, err := utils.NewChatClient(ctx, cfg.ChatProvider, cfg.ChatAPIKey(), cfg.ChatModel())
			if err != nil {
				return err
			}
			if closer, ok := client.(interface{ Close() error }); ok {
				defer closer.Close()
			}

			m := metrics.NewNop()
			catalog := itinerary.DefaultCatalog()
			var providers []services.GeocodeProvider
			if cfg.MapboxAccessToken != "" {
				providers = append(providers, services.NewMapboxGeocoder(cfg.MapboxAccessToken))
			}
			if cfg.AmapKey != "" {
				providers = append(providers, services.NewAmapGeocoder(cfg.AmapKey))
			}
			geocoder := services.NewGeocodeService(providers, services.GeocodeConfig{
				Timeout: cfg.GeocodeTimeout,
				Metrics: m,
				Logger:  log,
			})
			sessions := services.NewSessionService(services.SessionConfig{TTL: timeout}, catalog, geocoder,
				services.NewShareService(catalog, log), nil, m, log)
			defer sessions.Close()

			sess, err := sessions.Create(ctx)
			if err != nil {
				return err
			}
			turn, err := services.NewChatService(client, m, log).Chat(ctx, sess.Store, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if turn.Plan == nil {
				fmt.Fprintln(cmd.OutOrStdout(), turn.Reply.Content)
				return nil
			}

			if len(providers) > 0 {
				if _, err := sessions.GeocodePlan(ctx, sess, services.GeocodeOptions{Provider: provider}); err != nil {
					log.Warn("geocoding failed, printing plan without coordinates", zap.Error(err))
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(sess.Store.State().CurrentPlan)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for chat and geocoding")
	cmd.Flags().StringVar(&provider, "geocoder", "", "force a geocoding provider (mapbox or amap)")
	return cmd
}
