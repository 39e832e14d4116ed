package domain_models

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// AppState is one session's full itinerary state. Values handed out by the
// store are snapshots and are never modified afterwards.
type AppState struct {
	CurrentPlan *TravelPlan `json:"currentPlan"`
	ChatHistory []Message   `json:"chatHistory"`
	Loading     bool        `json:"loading"`
	Version     uint64      `json:"version"`
}
