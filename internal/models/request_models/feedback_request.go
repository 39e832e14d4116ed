package request_models

type AddFeedbackRequest struct {
	SessionID string `json:"session_id"`
	PlanID    string `json:"plan_id"`
	City      string `json:"city"`
	Comment   string `json:"comment"`
	Rating    int    `json:"rating" binding:"required"`
}

type LogEventRequest struct {
	Name       string                 `json:"name" binding:"required"`
	SessionID  string                 `json:"session_id"`
	Properties map[string]interface{} `json:"properties"`
}
