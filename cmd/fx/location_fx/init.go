package location_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/metrics"
	"grassmap/internal/models/domain_models"
	"grassmap/internal/services"
	mem "grassmap/pkg/memcache"
)

var Module = fx.Provide(provideLocationService)

func provideLocationService(cache mem.Store[domain_models.UserLocation], m *metrics.Metrics, logger *zap.Logger) services.LocationServiceInterface {
	return services.NewLocationService(cache, m, logger)
}
