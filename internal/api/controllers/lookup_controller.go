package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grassmap/internal/models/domain_models"
	"grassmap/internal/models/request_models"
	"grassmap/internal/models/response_models"
	"grassmap/internal/services"
	"grassmap/pkg/utils"
)

// LookupController serves the session-less helpers: raw geocoding, user
// location, navigation links, weather and reviews.
type LookupController struct {
	geocoder  services.GeocodeServiceInterface
	location  services.LocationServiceInterface
	lookup    services.LookupServiceInterface
	sessions  services.SessionServiceInterface
	analytics services.AnalyticsServiceInterface
	logger    *zap.Logger
}

func NewLookupController(
	geocoder services.GeocodeServiceInterface,
	location services.LocationServiceInterface,
	lookup services.LookupServiceInterface,
	sessions services.SessionServiceInterface,
	analytics services.AnalyticsServiceInterface,
	logger *zap.Logger,
) *LookupController {
	return &LookupController{
		geocoder:  geocoder,
		location:  location,
		lookup:    lookup,
		sessions:  sessions,
		analytics: analytics,
		logger:    logger,
	}
}

// Geocode godoc
// @Summary Geocode a batch of addresses
// @Description Result i always belongs to address i. Individual failures are reported per result.
// @Tags Geocoding
// @Accept json
// @Produce json
// @Param request body request_models.GeocodeBatchRequest true "Addresses"
// @Success 200 {object} utils.APIResponse{data=response_models.GeocodeResponse}
// @Failure 503 {object} utils.APIResponse
// @Router /geocoding [post]
func (l *LookupController) Geocode(c *gin.Context) {
	var req request_models.GeocodeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "addresses must be an array")
		return
	}
	loc := l.location.DetectLocation(c.Request.Context(), c.ClientIP())
	results, err := l.geocoder.Geocode(c.Request.Context(), req.Addresses, services.GeocodeOptions{
		Provider:     req.Provider,
		UserLocation: &loc,
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, response_models.GeocodeResponse{OK: true, Results: results}, "Addresses geocoded")
}

// GetLocation godoc
// @Summary Detect the caller's location
// @Description IP based, cached per address. Falls back to an unknown location outside China.
// @Tags Location
// @Success 200 {object} utils.APIResponse{data=domain_models.UserLocation}
// @Router /location [get]
func (l *LookupController) GetLocation(c *gin.Context) {
	if c.Query("refresh") == "true" {
		l.location.ClearCache(c.ClientIP())
	}
	utils.RespondSuccess(c, l.location.DetectLocation(c.Request.Context(), c.ClientIP()), "Location detected")
}

// UpdateGPS records device coordinates, and stores the result on the
// session when one is named.
func (l *LookupController) UpdateGPS(c *gin.Context) {
	var req request_models.GPSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	loc := l.location.UpdateGPS(c.Request.Context(), c.ClientIP(), req.Coords)
	if req.SessionID != "" {
		sess, err := l.sessions.Get(req.SessionID)
		if err != nil {
			utils.HandleServiceError(c, err)
			return
		}
		sess.SetLocation(loc)
	}
	utils.RespondSuccess(c, loc, "Location updated")
}

// Navigation godoc
// @Summary Navigation link
// @Description AMap for users in China or Chinese addresses, Google Maps otherwise. lat/lng take precedence over the address.
// @Tags Location
// @Param address query string false "Destination address"
// @Param lat query number false "Latitude"
// @Param lng query number false "Longitude"
// @Param session_id query string false "Session whose location to use"
// @Success 200 {object} utils.APIResponse{data=response_models.NavigationResponse}
// @Router /navigation [get]
func (l *LookupController) Navigation(c *gin.Context) {
	address := c.Query("address")
	var coords *domain_models.Coordinates
	if latStr, lngStr := c.Query("lat"), c.Query("lng"); latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid coordinates")
			return
		}
		coords = &domain_models.Coordinates{Lat: lat, Lng: lng}
	}
	if address == "" && coords == nil {
		utils.RespondError(c, http.StatusBadRequest, "address or lat/lng is required")
		return
	}

	var loc domain_models.UserLocation
	if id := c.Query("session_id"); id != "" {
		if sess, err := l.sessions.Get(id); err == nil && sess.Location() != nil {
			loc = *sess.Location()
		} else {
			loc = l.location.DetectLocation(c.Request.Context(), c.ClientIP())
		}
	} else {
		loc = l.location.DetectLocation(c.Request.Context(), c.ClientIP())
	}

	url := l.location.NavigationURL(loc, address, coords)
	provider := "google"
	if loc.IsChina || services.IsChineseAddress(address) {
		provider = "amap"
	}
	utils.RespondSuccess(c, response_models.NavigationResponse{URL: url, Provider: provider}, "Navigation link created")
}

// GetWeather godoc
// @Summary Current weather
// @Tags Lookup
// @Param city query string false "City, defaults to the caller's IP location"
// @Success 200 {object} utils.APIResponse{data=services.WeatherReport}
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /weather [get]
func (l *LookupController) GetWeather(c *gin.Context) {
	report, err := l.lookup.Weather(c.Request.Context(), c.Query("city"))
	track(c, l.analytics, l.logger, services.EventWeatherPopup, c.Query("session_id"), map[string]interface{}{"city": c.Query("city")})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, report, "Weather fetched successfully")
}

// GetReview godoc
// @Summary Reviews for a place
// @Description Searches Google Maps reviews, or Yelp when source is yelp, and extracts a review link
// @Tags Lookup
// @Accept json
// @Param request body request_models.ReviewRequest true "Place"
// @Success 200 {object} utils.APIResponse{data=services.ReviewResult}
// @Failure 502 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Router /review [post]
func (l *LookupController) GetReview(c *gin.Context) {
	var req request_models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "name is required")
		return
	}
	result, err := l.lookup.Review(c.Request.Context(), services.ReviewQuery{
		Name:    req.Name,
		Address: req.Address,
		Source:  req.Source,
	})
	track(c, l.analytics, l.logger, services.EventFetchReview, "", map[string]interface{}{"source": req.Source})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "Review fetched successfully")
}
