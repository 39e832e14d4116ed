package feedback_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"grassmap/internal/api/controllers"
	"grassmap/internal/repositories"
	"grassmap/internal/services"
)

var Module = fx.Provide(
	provideFeedbackRepo, provideFeedbackService, provideFeedbackController,
)

func provideFeedbackRepo(db *gorm.DB) repositories.FeedbackRepositoryInterface {
	if db == nil {
		return repositories.NewMemoryFeedbackRepository()
	}
	return repositories.NewFeedbackRepository(db)
}

func provideFeedbackService(feedbackRepo repositories.FeedbackRepositoryInterface, logger *zap.Logger) services.FeedbackServiceInterface {
	return services.NewFeedbackService(feedbackRepo, logger)
}

func provideFeedbackController(feedbackService services.FeedbackServiceInterface, analyticsService services.AnalyticsServiceInterface, logger *zap.Logger) *controllers.FeedbackController {
	return controllers.NewFeedbackController(feedbackService, analyticsService, logger)
}
