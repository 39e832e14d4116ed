package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grassmap/internal/models/domain_models"
)

const tokyoReply = `好的！为你安排 "东京一日游" 行程：
[
  {"name": "Blue Bottle", "type": "cafe", "address": "Kiyosumi", "reason": "招牌手冲"},
  {"name": "Senso-ji", "address": "Asakusa", "description": "古寺"},
  {"name": "Ginza Six", "type": "", "address": "Ginza"}
]
祝你玩得开心`

func TestParser_Parse(t *testing.T) {
	p := NewParser(nil, nil)

	plan, err := p.Parse(tokyoReply)
	require.NoError(t, err)

	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "东京一日游", plan.Title)
	assert.Equal(t, "东京", plan.City)
	require.Len(t, plan.GrassPoints, 3)

	first := plan.GrassPoints[0]
	assert.Equal(t, "Blue Bottle", first.Name)
	assert.Equal(t, "cafe", first.Type)
	assert.Equal(t, "招牌手冲", first.Description, "description falls back to reason")
	assert.False(t, first.Completed)

	assert.Equal(t, domain_models.DefaultPointType, plan.GrassPoints[1].Type)
	assert.Equal(t, "古寺", plan.GrassPoints[1].Description)
	assert.Equal(t, domain_models.DefaultPointType, plan.GrassPoints[2].Type)

	ids := map[string]bool{}
	for _, point := range plan.GrassPoints {
		assert.NotEmpty(t, point.ID)
		assert.False(t, ids[point.ID], "ids must be unique")
		ids[point.ID] = true
		assert.False(t, point.HasCoordinates())
	}
}

func TestParser_ParseErrors(t *testing.T) {
	p := NewParser(nil, nil)

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "plain prose", content: "你想去哪个城市？", wantErr: ErrNoItinerary},
		{name: "empty array", content: "[]", wantErr: ErrNoItinerary},
		{name: "broken json", content: `[{"name": "A",}]`, wantErr: ErrMalformedItinerary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := p.Parse(tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, plan)
			assert.Nil(t, p.ParsePlan(tt.content))
		})
	}
}

func TestParser_NullAndOddFields(t *testing.T) {
	p := NewParser(nil, nil)

	plan, err := p.Parse(`[{"name": "A", "description": null, "reason": "r", "type": null}, {"name": 7}]`)
	require.NoError(t, err)
	require.Len(t, plan.GrassPoints, 2)

	assert.Equal(t, "r", plan.GrassPoints[0].Description)
	assert.Equal(t, domain_models.DefaultPointType, plan.GrassPoints[0].Type)
	assert.Equal(t, "", plan.GrassPoints[1].Name)
}

func TestParser_FreshIDsPerParse(t *testing.T) {
	p := NewParser(nil, nil)

	a := p.ParsePlan(tokyoReply)
	b := p.ParsePlan(tokyoReply)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.GrassPoints[0].ID, b.GrassPoints[0].ID)
}

func TestCatalogHeuristics(t *testing.T) {
	h := NewCatalogHeuristics(nil)

	tests := []struct {
		text      string
		wantTitle string
		wantCity  string
	}{
		{text: `来一个 "巴黎一日游" 吧`, wantTitle: "巴黎一日游", wantCity: "巴黎"},
		{text: "Weekend in London\n[...]", wantTitle: "Weekend in London", wantCity: "伦敦"},
		{text: "\n没有城市", wantTitle: "精彩一日游", wantCity: "未知城市"},
		{text: "先去纽约再去东京", wantTitle: "先去纽约再去东京", wantCity: "纽约"},
		{text: "Here is \"Sam's Tokyo day trip\" for you", wantTitle: "Sam's Tokyo day trip", wantCity: "东京"},
		{text: `推荐 "Lily's 东京一日游" 行程`, wantTitle: "Lily's 东京一日游", wantCity: "东京"},
		{text: "试试「京都一日游」", wantTitle: "京都一日游", wantCity: "未知城市"},
		{text: "Try 'a Paris day trip' today", wantTitle: "a Paris day trip", wantCity: "巴黎"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.wantTitle, h.Title(tt.text))
			assert.Equal(t, tt.wantCity, h.City(tt.text))
		})
	}
}

func TestCatalog_PointType(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, "cafe", c.PointType("Coffee").Key)
	assert.Equal(t, "museum", c.PointType("博物馆").Key)
	assert.Equal(t, "other", c.PointType("spaceport").Key)
	assert.NotEmpty(t, c.PointType("").Icon)
}

func TestLoadCatalog_RequiresOtherType(t *testing.T) {
	_, err := LoadCatalog([]byte("types:\n  - key: cafe\n"))
	assert.Error(t, err)
}
