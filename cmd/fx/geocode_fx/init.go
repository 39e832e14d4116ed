package geocode_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/metrics"
	"grassmap/internal/models/domain_models"
	"grassmap/internal/services"
	"grassmap/pkg/config"
	mem "grassmap/pkg/memcache"
)

var Module = fx.Provide(provideGeocodeService)

func provideGeocodeService(
	cfg *config.Config,
	cache mem.Store[domain_models.Coordinates],
	m *metrics.Metrics,
	logger *zap.Logger,
) services.GeocodeServiceInterface {
	var providers []services.GeocodeProvider
	if cfg.MapboxAccessToken != "" {
		providers = append(providers, services.NewMapboxGeocoder(cfg.MapboxAccessToken))
	}
	if cfg.AmapKey != "" {
		providers = append(providers, services.NewAmapGeocoder(cfg.AmapKey))
	}
	if len(providers) == 0 {
		logger.Warn("no geocoding provider configured, plans will not be mapped")
	}
	return services.NewGeocodeService(providers, services.GeocodeConfig{
		Timeout: cfg.GeocodeTimeout,
		Cache:   cache,
		Metrics: m,
		Logger:  logger,
	})
}
