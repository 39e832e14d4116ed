package db_models

// Feedback is a traveller's rating of a finished trip.
type Feedback struct {
	BaseModel
	SessionID string `gorm:"type:varchar(64);index" json:"session_id,omitempty"`
	PlanID    string `gorm:"type:varchar(64);index" json:"plan_id,omitempty"`
	City      string `gorm:"type:varchar(64)" json:"city,omitempty"`
	Comment   string `gorm:"type:text" json:"comment"`
	Rating    int    `gorm:"type:int;not null;check:rating >= 1 AND rating <= 5" json:"rating"`
}
