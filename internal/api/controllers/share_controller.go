package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grassmap/internal/models/domain_models"
	"grassmap/internal/models/response_models"
	"grassmap/internal/services"
	"grassmap/pkg/config"
	"grassmap/pkg/utils"
)

type ShareController struct {
	sessions      services.SessionServiceInterface
	share         *services.ShareService
	publicBaseURL string
	logger        *zap.Logger
}

func NewShareController(sessions services.SessionServiceInterface, share *services.ShareService, cfg *config.Config, logger *zap.Logger) *ShareController {
	return &ShareController{
		sessions:      sessions,
		share:         share,
		publicBaseURL: cfg.PublicBaseURL,
		logger:        logger,
	}
}

// GetShare godoc
// @Summary Share card of the completed trip
// @Description Available once every point is checked in. With platform, also returns post text for wechat, xiaohongshu, instagram or twitter.
// @Tags Share
// @Param id path string true "Session ID"
// @Param platform query string false "Target platform"
// @Success 200 {object} utils.APIResponse{data=response_models.ShareResponse}
// @Failure 409 {object} utils.APIResponse
// @Router /sessions/{id}/share [get]
func (s *ShareController) GetShare(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	card, err := s.sessions.ShareCard(sess)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	resp := response_models.ShareResponse{Card: *card}
	if platform := c.Query("platform"); platform != "" {
		plan := sess.Store.State().CurrentPlan
		if plan == nil {
			utils.HandleServiceError(c, utils.ErrPlanNotFound)
			return
		}
		content, err := s.share.ShareText(*plan, domain_models.SharePlatform(platform))
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		resp.Content = content
	}
	utils.RespondSuccess(c, resp, "Share card fetched successfully")
}

// GetShareImage godoc
// @Summary Share card as PNG
// @Tags Share
// @Produce png
// @Param id path string true "Session ID"
// @Success 200 {file} binary
// @Failure 409 {object} utils.APIResponse
// @Router /sessions/{id}/share/image [get]
func (s *ShareController) GetShareImage(c *gin.Context) {
	sess, ok := loadSession(c, s.sessions)
	if !ok {
		return
	}
	card, err := s.sessions.ShareCard(sess)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	var plan domain_models.TravelPlan
	if p := sess.Store.State().CurrentPlan; p != nil && p.ID == card.PlanID {
		plan = *p
	}

	img, err := s.share.RenderCardPNG(*card, plan, s.publicBaseURL+"/sessions/"+sess.ID+"/share")
	if err != nil {
		s.logger.Error("share image rendering failed", zap.String("session_id", sess.ID), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, "Failed to render share image")
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}
