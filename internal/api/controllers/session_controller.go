package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/models/domain_models"
	"grassmap/internal/models/request_models"
	"grassmap/internal/models/response_models"
	"grassmap/internal/services"
	"grassmap/pkg/utils"
)

const backgroundGeocodeTimeout = 30 * time.Second

type SessionController struct {
	sessions  services.SessionServiceInterface
	chat      services.ChatServiceInterface
	location  services.LocationServiceInterface
	analytics services.AnalyticsServiceInterface
	logger    *zap.Logger
}

func NewSessionController(
	sessions services.SessionServiceInterface,
	chat services.ChatServiceInterface,
	location services.LocationServiceInterface,
	analytics services.AnalyticsServiceInterface,
	logger *zap.Logger,
) *SessionController {
	return &SessionController{
		sessions:  sessions,
		chat:      chat,
		location:  location,
		analytics: analytics,
		logger:    logger,
	}
}

// loadSession resolves :id or writes the error response.
func loadSession(c *gin.Context, sessions services.SessionServiceInterface) (*services.Session, bool) {
	sess, err := sessions.Get(c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return nil, false
	}
	return sess, true
}

func track(c *gin.Context, analytics services.AnalyticsServiceInterface, logger *zap.Logger, name, sessionID string, props map[string]interface{}) {
	if analytics == nil {
		return
	}
	err := analytics.LogEvent(c.Request.Context(), services.AnalyticsEventInput{
		Name:       name,
		SessionID:  sessionID,
		Properties: props,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	if err != nil {
		logger.Debug("analytics event dropped", zap.String("name", name), zap.Error(err))
	}
}

// CreateSession godoc
// @Summary Create a planning session
// @Description Starts an empty session and detects the caller's location from their IP
// @Tags Sessions
// @Produce json
// @Success 200 {object} utils.APIResponse{data=response_models.SessionResponse}
// @Router /sessions [post]
func (s *SessionController) CreateSession(c *gin.Context) {
	sess, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	loc := s.location.DetectLocation(c.Request.Context(), c.ClientIP())
	sess.SetLocation(loc)
	track(c, s.analytics, s.logger, services.EventVisitHome, sess.ID, nil)

	utils.RespondSuccess(c, response_models.SessionResponse{
		SessionID:    sess.ID,
		State:        sess.Store.State(),
		UserLocation: &loc,
	}, "Session created")
}

// GetSession godoc
// @Summary Get session state
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse{data=response_models.SessionResponse}
// @Failure 404 {object} utils.APIResponse
// @Router /sessions/{id} [get]
func (s *SessionController) GetSession(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	utils.RespondSuccess(c, response_models.SessionResponse{
		SessionID:    sess.ID,
		State:        sess.Store.State(),
		UserLocation: sess.Location(),
	}, "Session fetched successfully")
}

func (s *SessionController) DeleteSession(c *gin.Context) {
	if _, ok := loadSession(c, s.sessions); !ok {
		return
	}
	s.sessions.Delete(c.Param("id"))
	utils.RespondSuccess(c, nil, "Session closed")
}

// Chat godoc
// @Summary Send a chat message
// @Description Sends the message to the assistant. A reply containing an itinerary replaces the current plan, which is then geocoded in the background.
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.ChatRequest true "Chat message"
// @Success 200 {object} utils.APIResponse{data=services.ChatTurn}
// @Failure 409 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /sessions/{id}/chat [post]
func (s *SessionController) Chat(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "message is required")
		return
	}

	turn, err := s.chat.Chat(c.Request.Context(), sess.Store, req.Message)
	track(c, s.analytics, s.logger, services.EventChat, sess.ID, map[string]interface{}{"ok": err == nil})
	if err != nil {
		if turn != nil && services.IsChatFailure(err) {
			code, msg := utils.StatusFor(err)
			utils.RespondErrorWithData(c, code, msg, turn)
			return
		}
		utils.HandleServiceError(c, err)
		return
	}

	if turn.PlanReplaced && turn.Plan != nil {
		track(c, s.analytics, s.logger, services.EventGeneratePlan, sess.ID, map[string]interface{}{
			"city":   turn.Plan.City,
			"points": len(turn.Plan.GrassPoints),
		})
		go s.geocodeInBackground(sess)
	}
	utils.RespondSuccess(c, turn, "Chat reply received")
}

func (s *SessionController) geocodeInBackground(sess *services.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundGeocodeTimeout)
	defer cancel()
	_, err := s.sessions.GeocodePlan(ctx, sess, services.GeocodeOptions{})
	switch {
	case err == nil:
	case errors.Is(err, utils.ErrStaleResponse):
		s.logger.Debug("background geocode superseded", zap.String("session_id", sess.ID))
	default:
		s.logger.Warn("background geocode failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// CancelChat godoc
// @Summary Cancel the pending chat request
// @Description The pending reply is discarded when it arrives and the loading flag is cleared
// @Tags Chat
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse{data=domain_models.AppState}
// @Router /sessions/{id}/chat/cancel [post]
func (s *SessionController) CancelChat(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	sess.Store.CancelRequests(itinerary.RequestChat)
	utils.RespondSuccess(c, sess.Store.State(), "Chat request cancelled")
}

func (s *SessionController) AddMessage(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	msg := sess.Store.AddMessage(req.Role, req.Content)
	utils.RespondSuccess(c, gin.H{"message": msg, "state": sess.Store.State()}, "Message added")
}

func (s *SessionController) UpdatePlan(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess.Store.UpdatePlan(req.Plan)
	utils.RespondSuccess(c, sess.Store.State(), "Plan updated")
}

func (s *SessionController) SetLoading(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.SetLoadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess.Store.SetLoading(req.Loading)
	utils.RespondSuccess(c, sess.Store.State(), "Loading flag updated")
}

// TogglePoint godoc
// @Summary Toggle a grass point's completion
// @Description Unknown point ids leave the state unchanged
// @Tags Points
// @Param id path string true "Session ID"
// @Param pointId path string true "Grass point ID"
// @Success 200 {object} utils.APIResponse{data=domain_models.AppState}
// @Router /sessions/{id}/points/{pointId}/toggle [post]
func (s *SessionController) TogglePoint(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	pointID := c.Param("pointId")
	if sess.Store.ToggleGrassPoint(pointID) {
		if p := findPoint(sess.Store.State(), pointID); p != nil && p.Completed {
			track(c, s.analytics, s.logger, services.EventCheckIn, sess.ID, map[string]interface{}{"pointId": pointID})
		}
	}
	utils.RespondSuccess(c, sess.Store.State(), "Point toggled")
}

func (s *SessionController) ReorderPoints(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.ReorderPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess.Store.ReorderGrassPoints(req.GrassPoints)
	utils.RespondSuccess(c, sess.Store.State(), "Points reordered")
}

func (s *SessionController) UpdatePointTime(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.PointTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess.Store.UpdateGrassPointTime(c.Param("pointId"), req.Time)
	utils.RespondSuccess(c, sess.Store.State(), "Point time updated")
}

func (s *SessionController) UpdatePointStatus(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.PointStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "status must be none, liked or disliked")
		return
	}
	sess.Store.UpdateGrassPointStatus(c.Param("pointId"), req.Status)
	utils.RespondSuccess(c, sess.Store.State(), "Point status updated")
}

func (s *SessionController) UpdatePointPhoto(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.PointPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	sess.Store.UpdateGrassPointPhoto(c.Param("pointId"), req.PhotoURL)
	utils.RespondSuccess(c, sess.Store.State(), "Point photo updated")
}

func (s *SessionController) AddPointComment(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "text is required")
		return
	}
	sess.Store.UpdateGrassPointComment(c.Param("pointId"), domain_models.Comment{
		Text: req.Text,
		User: req.User,
		Time: utils.FormatRFC3339CN(time.Now()),
	})
	utils.RespondSuccess(c, sess.Store.State(), "Comment added")
}

func (s *SessionController) UpdatePointGrassStatus(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	var req request_models.GrassStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "grassStatus must be none, planted or removed")
		return
	}
	sess.Store.UpdateGrassPointGrassStatus(c.Param("pointId"), req.GrassStatus)
	utils.RespondSuccess(c, sess.Store.State(), "Point grass status updated")
}

func findPoint(state domain_models.AppState, id string) *domain_models.GrassPoint {
	if state.CurrentPlan == nil {
		return nil
	}
	for i := range state.CurrentPlan.GrassPoints {
		if state.CurrentPlan.GrassPoints[i].ID == id {
			return &state.CurrentPlan.GrassPoints[i]
		}
	}
	return nil
}
