package request_models

import "grassmap/internal/models/domain_models"

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type AddMessageRequest struct {
	Role    domain_models.Role `json:"role" binding:"required,oneof=user assistant"`
	Content string             `json:"content" binding:"required"`
}

type UpdatePlanRequest struct {
	Plan domain_models.TravelPlan `json:"plan"`
}

type SetLoadingRequest struct {
	Loading bool `json:"loading"`
}

type ReorderPointsRequest struct {
	GrassPoints []domain_models.GrassPoint `json:"grassPoints" binding:"required"`
}

type PointTimeRequest struct {
	Time string `json:"time"`
}

type PointStatusRequest struct {
	Status domain_models.PointStatus `json:"status" binding:"required,oneof=none liked disliked"`
}

type PointPhotoRequest struct {
	PhotoURL string `json:"photoUrl"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
	User string `json:"user"`
}

type GrassStatusRequest struct {
	GrassStatus domain_models.GrassStatus `json:"grassStatus" binding:"required,oneof=none planted removed"`
}

type GeocodePlanRequest struct {
	Provider string `json:"provider"`
}

type MarkerClickRequest struct {
	Action string `json:"action"`
}
