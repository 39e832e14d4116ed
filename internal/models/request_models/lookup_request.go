package request_models

import "grassmap/internal/models/domain_models"

type GeocodeBatchRequest struct {
	Addresses []string `json:"addresses" binding:"required"`
	Provider  string   `json:"provider"`
}

type ReviewRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Source  string `json:"source" binding:"omitempty,oneof=google yelp"`
}

type GPSRequest struct {
	Coords    domain_models.GPSCoords `json:"coords"`
	SessionID string                  `json:"session_id"`
}
