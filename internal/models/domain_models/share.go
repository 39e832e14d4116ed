package domain_models

type ShareStats struct {
	TotalPoints     int    `json:"totalPoints"`
	CompletedPoints int    `json:"completedPoints"`
	Duration        string `json:"duration"`
}

// ShareCard is the summary artifact produced once a trip is completed.
type ShareCard struct {
	PlanID        string     `json:"planId"`
	Title         string     `json:"title"`
	City          string     `json:"city"`
	Summary       string     `json:"summary"`
	CompletedTime string     `json:"completedTime"`
	Stats         ShareStats `json:"stats"`
}

type SharePlatform string

const (
	PlatformWechat      SharePlatform = "wechat"
	PlatformXiaohongshu SharePlatform = "xiaohongshu"
	PlatformInstagram   SharePlatform = "instagram"
	PlatformTwitter     SharePlatform = "twitter"
)
