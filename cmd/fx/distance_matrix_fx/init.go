package distance_matrix_fx

import (
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/services"
	"grassmap/pkg/config"
)

var Module = fx.Provide(provideMatrixClient, provideRouteDistanceService)

func provideMatrixClient(cfg *config.Config) services.DistanceMatrixService {
	if cfg.MapboxAccessToken == "" {
		return nil
	}
	return services.NewMapboxMatrixClient(cfg.MapboxAccessToken, services.NewMatrixPairCache(7*24*time.Hour))
}

func provideRouteDistanceService(matrix services.DistanceMatrixService, logger *zap.Logger) *services.RouteDistanceService {
	return services.NewRouteDistanceService(matrix, logger)
}
