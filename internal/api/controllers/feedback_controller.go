package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grassmap/internal/models/request_models"
	"grassmap/internal/services"
	"grassmap/pkg/utils"
)

type FeedbackController struct {
	feedbackService  services.FeedbackServiceInterface
	analyticsService services.AnalyticsServiceInterface
	logger           *zap.Logger
}

func NewFeedbackController(feedbackService services.FeedbackServiceInterface, analyticsService services.AnalyticsServiceInterface, logger *zap.Logger) *FeedbackController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackController{feedbackService: feedbackService, analyticsService: analyticsService, logger: logger}
}

// AddFeedback godoc
// @Summary Add feedback
// @Description Add a comment and a 1-5 rating for a trip
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body request_models.AddFeedbackRequest true "Feedback payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /feedback [post]
func (f *FeedbackController) AddFeedback(c *gin.Context) {
	var req request_models.AddFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	feedback, err := f.feedbackService.AddFeedback(c.Request.Context(), services.FeedbackInput{
		SessionID: req.SessionID,
		PlanID:    req.PlanID,
		City:      req.City,
		Comment:   req.Comment,
		Rating:    req.Rating,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	track(c, f.analyticsService, f.logger, services.EventFeedback, req.SessionID, map[string]interface{}{"rating": req.Rating})
	utils.RespondSuccess(c, feedback, "Feedback added successfully")
}

// ListFeedback godoc
// @Summary List feedback
// @Description Get a paginated list of feedback
// @Tags Feedback
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10) minimum(1) maximum(100)
// @Success 200 {array} db_models.Feedback
// @Router /feedback [get]
func (f *FeedbackController) ListFeedback(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("pageSize", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size")
		return
	}

	feedbacks, err := f.feedbackService.GetFeedback(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, feedbacks, "Feedback fetched successfully")
}

// LogEvent godoc
// @Summary Record an analytics event
// @Tags Analytics
// @Accept json
// @Param request body request_models.LogEventRequest true "Event"
// @Success 200 {object} utils.APIResponse
// @Router /events [post]
func (f *FeedbackController) LogEvent(c *gin.Context) {
	var req request_models.LogEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "name is required")
		return
	}
	err := f.analyticsService.LogEvent(c.Request.Context(), services.AnalyticsEventInput{
		Name:       req.Name,
		SessionID:  req.SessionID,
		Properties: req.Properties,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Event recorded")
}

// EventSummary godoc
// @Summary Event counts by name
// @Tags Analytics
// @Param window query string false "Look-back window, e.g. 24h" default(24h)
// @Success 200 {array} repositories.EventCount
// @Router /events/summary [get]
func (f *FeedbackController) EventSummary(c *gin.Context) {
	window, err := time.ParseDuration(c.DefaultQuery("window", "24h"))
	if err != nil || window <= 0 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid window")
		return
	}
	rows, err := f.analyticsService.Summary(c.Request.Context(), window)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, rows, "Event summary fetched successfully")
}
