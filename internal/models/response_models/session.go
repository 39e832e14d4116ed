package response_models

import (
	"grassmap/internal/mapview"
	"grassmap/internal/models/domain_models"
)

type SessionResponse struct {
	SessionID    string                      `json:"session_id"`
	State        domain_models.AppState      `json:"state"`
	UserLocation *domain_models.UserLocation `json:"user_location,omitempty"`
}

type GeocodeResponse struct {
	OK      bool                          `json:"ok"`
	Results []domain_models.GeocodeResult `json:"results"`
}

type MarkerClickResponse struct {
	Popup *mapview.Popup         `json:"popup"`
	State domain_models.AppState `json:"state"`
}

type ShareResponse struct {
	Card    domain_models.ShareCard `json:"card"`
	Content interface{}             `json:"content,omitempty"`
}

type NavigationResponse struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}
