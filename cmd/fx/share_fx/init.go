package share_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/services"
)

var Module = fx.Provide(provideCatalog, provideShareService)

func provideCatalog() *itinerary.Catalog {
	return itinerary.DefaultCatalog()
}

func provideShareService(catalog *itinerary.Catalog, logger *zap.Logger) *services.ShareService {
	return services.NewShareService(catalog, logger)
}
