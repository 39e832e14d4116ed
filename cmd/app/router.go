package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"grassmap/internal/api/controllers"
	"grassmap/pkg/config"
	"grassmap/pkg/middleware"
	"grassmap/pkg/utils"
)

type Controllers struct {
	Session  *controllers.SessionController
	Map      *controllers.MapController
	Share    *controllers.ShareController
	Lookup   *controllers.LookupController
	Feedback *controllers.FeedbackController
}

func ProvideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	sessionController *controllers.SessionController,
	mapController *controllers.MapController,
	shareController *controllers.ShareController,
	lookupController *controllers.LookupController,
	feedbackController *controllers.FeedbackController,
) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(logger))

	RegisterRoutes(r, cfg, Controllers{
		Session:  sessionController,
		Map:      mapController,
		Share:    shareController,
		Lookup:   lookupController,
		Feedback: feedbackController,
	})

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
	}).Handler(r)
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, c Controllers) {
	chatLimiter := middleware.NewRateLimiter(cfg.ChatRatePerMinute, 3)

	r.GET("/healthz", func(ctx *gin.Context) {
		utils.RespondSuccess(ctx, gin.H{"status": "ok"}, "")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessions := r.Group("/sessions")
	sessions.POST("", c.Session.CreateSession)
	sessions.GET("/:id", c.Session.GetSession)
	sessions.DELETE("/:id", c.Session.DeleteSession)
	sessions.POST("/:id/chat", chatLimiter.Limit(), c.Session.Chat)
	sessions.POST("/:id/chat/cancel", c.Session.CancelChat)
	sessions.POST("/:id/messages", c.Session.AddMessage)
	sessions.PUT("/:id/plan", c.Session.UpdatePlan)
	sessions.PUT("/:id/loading", c.Session.SetLoading)

	points := sessions.Group("/:id/points")
	points.PUT("/order", c.Session.ReorderPoints)
	points.POST("/:pointId/toggle", c.Session.TogglePoint)
	points.PUT("/:pointId/time", c.Session.UpdatePointTime)
	points.PUT("/:pointId/status", c.Session.UpdatePointStatus)
	points.PUT("/:pointId/photo", c.Session.UpdatePointPhoto)
	points.POST("/:pointId/comments", c.Session.AddPointComment)
	points.PUT("/:pointId/grass-status", c.Session.UpdatePointGrassStatus)

	sessions.POST("/:id/geocode", c.Map.GeocodePlan)
	sessions.GET("/:id/map", c.Map.GetMap)
	sessions.POST("/:id/map/markers/:pointId/click", c.Map.ClickMarker)
	sessions.GET("/:id/map/distances", c.Map.GetDistances)
	sessions.GET("/:id/ws", c.Map.Stream)

	sessions.GET("/:id/share", c.Share.GetShare)
	sessions.GET("/:id/share/image", c.Share.GetShareImage)

	r.POST("/geocoding", c.Lookup.Geocode)
	r.GET("/location", c.Lookup.GetLocation)
	r.POST("/location/gps", c.Lookup.UpdateGPS)
	r.GET("/navigation", c.Lookup.Navigation)
	r.GET("/weather", c.Lookup.GetWeather)
	r.POST("/review", c.Lookup.GetReview)

	feedback := r.Group("/feedback")
	feedback.POST("", c.Feedback.AddFeedback)
	feedback.GET("", c.Feedback.ListFeedback)

	events := r.Group("/events")
	events.POST("", c.Feedback.LogEvent)
	events.GET("/summary", c.Feedback.EventSummary)
}
