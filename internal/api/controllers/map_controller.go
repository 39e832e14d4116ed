package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grassmap/internal/mapview"
	"grassmap/internal/models/request_models"
	"grassmap/internal/models/response_models"
	"grassmap/internal/services"
	"grassmap/pkg/utils"
)

type MapController struct {
	sessions  services.SessionServiceInterface
	distances *services.RouteDistanceService
	logger    *zap.Logger
}

func NewMapController(sessions services.SessionServiceInterface, distances *services.RouteDistanceService, logger *zap.Logger) *MapController {
	return &MapController{sessions: sessions, distances: distances, logger: logger}
}

// GeocodePlan godoc
// @Summary Geocode the current plan
// @Description Resolves every point address and attaches coordinates to the points that succeeded. Results align with the plan's point order.
// @Tags Map
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body request_models.GeocodePlanRequest false "Provider override"
// @Success 200 {object} utils.APIResponse{data=response_models.GeocodeResponse}
// @Failure 409 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /sessions/{id}/geocode [post]
func (m *MapController) GeocodePlan(c *gin.Context) {
	sess, ok := loadSession(c, m.sessions)
	if !ok {
		return
	}
	var req request_models.GeocodePlanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	results, err := m.sessions.GeocodePlan(c.Request.Context(), sess, services.GeocodeOptions{Provider: req.Provider})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.GeocodeResponse{OK: true, Results: results}, "Plan geocoded")
}

// GetMap godoc
// @Summary Current map scene
// @Description Markers, route and center for the points that have coordinates, plus the same data as GeoJSON
// @Tags Map
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse{data=services.MapView}
// @Router /sessions/{id}/map [get]
func (m *MapController) GetMap(c *gin.Context) {
	sess, ok := loadSession(c, m.sessions)
	if !ok {
		return
	}
	utils.RespondSuccess(c, m.sessions.MapView(sess), "Map fetched successfully")
}

// ClickMarker godoc
// @Summary Interact with a marker
// @Description action is one of open, toggle, select, like, dislike, plant, remove. like/dislike/plant/remove apply to the selected marker.
// @Tags Map
// @Param id path string true "Session ID"
// @Param pointId path string true "Grass point ID"
// @Param request body request_models.MarkerClickRequest false "Action, default open"
// @Success 200 {object} utils.APIResponse{data=response_models.MarkerClickResponse}
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /sessions/{id}/map/markers/{pointId}/click [post]
func (m *MapController) ClickMarker(c *gin.Context) {
	sess, ok := loadSession(c, m.sessions)
	if !ok {
		return
	}
	var req request_models.MarkerClickRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}
	action := mapview.Action(req.Action)
	if action == "" {
		action = mapview.ActionOpen
	}

	popup, err := sess.Renderer.Click(c.Param("pointId"), action)
	if err != nil {
		if errors.Is(err, mapview.ErrMarkerNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Marker not found")
			return
		}
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.MarkerClickResponse{
		Popup: popup,
		State: sess.Store.State(),
	}, "Marker updated")
}

// GetDistances godoc
// @Summary Leg distances along the route
// @Description Straight-line distance per leg, with driving distance when the matrix provider is configured
// @Tags Map
// @Param id path string true "Session ID"
// @Success 200 {object} utils.APIResponse{data=services.RouteDistances}
// @Router /sessions/{id}/map/distances [get]
func (m *MapController) GetDistances(c *gin.Context) {
	sess, ok := loadSession(c, m.sessions)
	if !ok {
		return
	}
	utils.RespondSuccess(c, m.distances.Compute(c.Request.Context(), sess.Renderer.Points()), "Distances computed")
}

// Stream upgrades to a websocket carrying map operations and trip events.
func (m *MapController) Stream(c *gin.Context) {
	sess, ok := loadSession(c, m.sessions)
	if !ok {
		return
	}
	if err := sess.Hub.Serve(c.Writer, c.Request); err != nil {
		m.logger.Debug("websocket closed", zap.String("session_id", sess.ID), zap.Error(err))
	}
}
