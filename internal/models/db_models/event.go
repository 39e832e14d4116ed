package db_models

// AnalyticsEvent is one row of the product event log. Properties holds a
// JSON object.
type AnalyticsEvent struct {
	BaseModel
	Name       string `gorm:"type:varchar(64);not null;index" json:"name"`
	SessionID  string `gorm:"type:varchar(64);index" json:"session_id,omitempty"`
	Properties string `gorm:"type:jsonb" json:"properties"`
	ClientIP   string `gorm:"type:varchar(64)" json:"-"`
	UserAgent  string `gorm:"type:text" json:"-"`
}
