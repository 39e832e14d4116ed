package lookup_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/metrics"
	"grassmap/internal/services"
	"grassmap/pkg/config"
)

var Module = fx.Provide(provideLookupService)

func provideLookupService(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) services.LookupServiceInterface {
	return services.NewLookupService(cfg.WeatherAPIKey, cfg.SerpAPIKey, m, logger)
}
