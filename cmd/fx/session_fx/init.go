package session_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/metrics"
	"grassmap/internal/services"
	"grassmap/pkg/config"
)

var Module = fx.Provide(provideSessionService)

func provideSessionService(
	lc fx.Lifecycle,
	cfg *config.Config,
	catalog *itinerary.Catalog,
	geocoder services.GeocodeServiceInterface,
	share *services.ShareService,
	analytics services.AnalyticsServiceInterface,
	m *metrics.Metrics,
	logger *zap.Logger,
) services.SessionServiceInterface {
	svc := services.NewSessionService(services.SessionConfig{
		TTL:        cfg.SessionTTL,
		ShareDelay: cfg.CelebrationDelay,
	}, catalog, geocoder, share, analytics, m, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			svc.Close()
			return nil
		},
	})
	return svc
}
