package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grassmap/internal/itinerary"
	"grassmap/internal/models/domain_models"
	"grassmap/pkg/utils"
)

func completedPlan(types ...string) domain_models.TravelPlan {
	plan := domain_models.TravelPlan{ID: "plan-1", Title: "东京一日游", City: "东京"}
	for i, typ := range types {
		plan.GrassPoints = append(plan.GrassPoints, domain_models.GrassPoint{
			ID:        string(rune('a' + i)),
			Name:      strings.ToUpper(string(rune('a' + i))),
			Type:      typ,
			Completed: true,
		})
	}
	return plan
}

func newTestShareService() *ShareService {
	s := NewShareService(nil, nil)
	s.intn = func(int) int { return 0 }
	return s
}

func TestDurationBucket(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "半日游"},
		{3, "半日游"},
		{4, "一日游"},
		{6, "一日游"},
		{7, "深度游"},
		{10, "深度游"},
		{11, "多日游"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DurationBucket(tc.n), "n=%d", tc.n)
	}
}

func TestShareService_Summary(t *testing.T) {
	s := newTestShareService()
	cafe := itinerary.DefaultCatalog().PointType("cafe").Summaries
	require.NotEmpty(t, cafe)

	plan := completedPlan("cafe", "sight")
	assert.Equal(t, "在东京"+cafe[0]+"，2个草点全部打卡完成！", s.Summary(plan))

	// The first completed point decides the template.
	plan.GrassPoints[0].Completed = false
	sight := itinerary.DefaultCatalog().PointType("sight").Summaries
	assert.Equal(t, "在东京"+sight[0]+"，1个草点全部打卡完成！", s.Summary(plan))
}

func TestShareService_BuildCard(t *testing.T) {
	s := newTestShareService()
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	card := s.BuildCard(completedPlan("cafe", "sight", "other"), now)

	assert.Equal(t, "plan-1", card.PlanID)
	assert.Equal(t, "东京一日游", card.Title)
	assert.Equal(t, "东京", card.City)
	assert.Equal(t, utils.FormatDateCN(now), card.CompletedTime)
	assert.Equal(t, domain_models.ShareStats{TotalPoints: 3, CompletedPoints: 3, Duration: "半日游"}, card.Stats)
}

func TestShareService_ShareText(t *testing.T) {
	s := newTestShareService()
	plan := completedPlan("cafe", "sight")
	summary := s.Summary(plan)

	cases := []struct {
		platform domain_models.SharePlatform
		contains []string
		withURL  bool
	}{
		{domain_models.PlatformWechat, []string{"🌍 " + summary, "📍 东京", "✅ 2/2 打卡完成", "#种草官", "#打卡"}, false},
		{domain_models.PlatformXiaohongshu, []string{"📍 地点：东京", "🎯 完成度：2/2", "#旅行攻略", "#城市探索"}, false},
		{domain_models.PlatformInstagram, []string{"2/2 spots completed", "#travelgram", "#wanderlust"}, false},
		{domain_models.PlatformTwitter, []string{summary + " 🌟", "✅ 2/2", "#cityguide"}, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.platform), func(t *testing.T) {
			content, err := s.ShareText(plan, tc.platform)
			require.NoError(t, err)
			assert.Equal(t, tc.platform, content.Platform)
			for _, want := range tc.contains {
				assert.Contains(t, content.Text, want)
			}
			if tc.withURL {
				assert.True(t, strings.HasPrefix(content.URL, "https://twitter.com/intent/tweet?text="))
			} else {
				assert.Empty(t, content.URL)
			}
		})
	}

	_, err := s.ShareText(plan, "myspace")
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)
}

func TestShareService_InstagramLowercasesCity(t *testing.T) {
	s := newTestShareService()
	plan := completedPlan("cafe")
	plan.City = "Paris"

	content, err := s.ShareText(plan, domain_models.PlatformInstagram)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "#paris")
}

func tinyPNGDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestShareService_RenderCardPNG(t *testing.T) {
	s := newTestShareService()
	plan := completedPlan("cafe", "sight")
	plan.GrassPoints[0].PhotoURL = tinyPNGDataURL(t)
	plan.GrassPoints[1].PhotoURL = "https://example.com/not-a-data-url.jpg"
	card := s.BuildCard(plan, time.Now())

	out, err := s.RenderCardPNG(card, plan, "http://localhost:8080/sessions/x/share")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, cardWidth, img.Bounds().Dx())
	assert.Equal(t, cardHeight, img.Bounds().Dy())
}

func TestDecodeDataURL(t *testing.T) {
	img, err := decodeDataURL(tinyPNGDataURL(t))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	for _, bad := range []string{"", "https://x/y.png", "data:text/plain;base64,aGk=", "data:image/png;base64,@@@"} {
		_, err := decodeDataURL(bad)
		assert.Error(t, err, bad)
	}
}
