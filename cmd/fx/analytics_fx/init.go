package analytics_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"grassmap/internal/metrics"
	"grassmap/internal/repositories"
	"grassmap/internal/services"
)

var Module = fx.Provide(provideEventRepo, provideAnalyticsService)

func provideEventRepo(db *gorm.DB) repositories.EventRepository {
	if db == nil {
		return repositories.NewMemoryEventRepository()
	}
	return repositories.NewEventRepository(db)
}

func provideAnalyticsService(repo repositories.EventRepository, m *metrics.Metrics, logger *zap.Logger) services.AnalyticsServiceInterface {
	return services.NewAnalyticsService(repo, m, logger)
}
