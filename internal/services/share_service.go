package services

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/models/domain_models"
	"grassmap/pkg/utils"
)

// ShareContent is ready-to-post text for one platform.
type ShareContent struct {
	Platform domain_models.SharePlatform `json:"platform"`
	Text     string                      `json:"text"`
	// URL opens the platform's composer when it has a web one.
	URL string `json:"url,omitempty"`
}

type ShareService struct {
	catalog *itinerary.Catalog
	intn    func(n int) int
	logger  *zap.Logger
}

func NewShareService(catalog *itinerary.Catalog, logger *zap.Logger) *ShareService {
	if catalog == nil {
		catalog = itinerary.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{catalog: catalog, intn: rand.IntN, logger: logger}
}

// Summary picks a template for the first completed point's type and adds
// the city and completed count.
func (s *ShareService) Summary(plan domain_models.TravelPlan) string {
	completed := 0
	mainType := domain_models.DefaultPointType
	for _, p := range plan.GrassPoints {
		if !p.Completed {
			continue
		}
		if completed == 0 {
			mainType = p.Type
		}
		completed++
	}

	options := s.catalog.PointType(mainType).Summaries
	base := "完成了精彩的城市探索"
	if len(options) > 0 {
		base = options[s.intn(len(options))]
	}
	return fmt.Sprintf("在%s%s，%d个草点全部打卡完成！", plan.City, base, completed)
}

// DurationBucket estimates the trip length label from its point count.
func DurationBucket(pointCount int) string {
	switch {
	case pointCount <= 3:
		return "半日游"
	case pointCount <= 6:
		return "一日游"
	case pointCount <= 10:
		return "深度游"
	default:
		return "多日游"
	}
}

func (s *ShareService) BuildCard(plan domain_models.TravelPlan, now time.Time) domain_models.ShareCard {
	return domain_models.ShareCard{
		PlanID:        plan.ID,
		Title:         plan.Title,
		City:          plan.City,
		Summary:       s.Summary(plan),
		CompletedTime: utils.FormatDateCN(now),
		Stats: domain_models.ShareStats{
			TotalPoints:     len(plan.GrassPoints),
			CompletedPoints: plan.CompletedCount(),
			Duration:        DurationBucket(len(plan.GrassPoints)),
		},
	}
}

func (s *ShareService) ShareText(plan domain_models.TravelPlan, platform domain_models.SharePlatform) (ShareContent, error) {
	summary := s.Summary(plan)
	done, total := plan.CompletedCount(), len(plan.GrassPoints)

	var template string
	var hashtags []string
	switch platform {
	case domain_models.PlatformWechat:
		template = fmt.Sprintf("🌍 %s\n\n📍 %s\n✅ %d/%d 打卡完成\n\n#旅行 #%s #种草官", summary, plan.City, done, total, plan.City)
		hashtags = []string{"旅行", plan.City, "种草官", "打卡"}
	case domain_models.PlatformXiaohongshu:
		template = fmt.Sprintf("%s ✨\n\n📍 地点：%s\n🎯 完成度：%d/%d\n💝 推荐指数：⭐⭐⭐⭐⭐\n\n", summary, plan.City, done, total)
		hashtags = []string{"旅行攻略", plan.City, "打卡", "种草", "一日游", "城市探索"}
	case domain_models.PlatformInstagram:
		template = fmt.Sprintf("%s ✨\n\n📍 %s\n🎯 %d/%d spots completed\n\n", summary, plan.City, done, total)
		hashtags = []string{"travel", "cityguide", strings.ToLower(plan.City), "exploration", "travelgram", "wanderlust"}
	case domain_models.PlatformTwitter:
		template = fmt.Sprintf("%s 🌟\n\n📍 %s\n✅ %d/%d\n\n", summary, plan.City, done, total)
		hashtags = []string{"travel", plan.City, "cityguide"}
	default:
		return ShareContent{}, fmt.Errorf("%w: unsupported platform %q", utils.ErrInvalidRequest, platform)
	}

	tags := make([]string, len(hashtags))
	for i, tag := range hashtags {
		tags[i] = "#" + tag
	}
	content := ShareContent{Platform: platform, Text: template + strings.Join(tags, " ")}
	if platform == domain_models.PlatformTwitter {
		content.URL = "https://twitter.com/intent/tweet?text=" + url.QueryEscape(content.Text)
	}
	return content, nil
}
