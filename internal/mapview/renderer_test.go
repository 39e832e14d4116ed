package mapview

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grassmap/internal/itinerary"
	"grassmap/internal/models/domain_models"
	"grassmap/pkg/utils"
)

type recordingSurface struct {
	ops       []string
	failOn    map[string]bool
	panicOn   map[string]bool
	lastRoute []domain_models.Coordinates
	center    domain_models.Coordinates
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{failOn: map[string]bool{}, panicOn: map[string]bool{}}
}

func (s *recordingSurface) do(op string) error {
	s.ops = append(s.ops, op)
	if s.panicOn[op] {
		panic("surface exploded")
	}
	if s.failOn[op] {
		return errors.New("surface failed")
	}
	return nil
}

func (s *recordingSurface) AddMarker(m Marker) error {
	return s.do(fmt.Sprintf("add:%s:%s", m.PointID, m.Label))
}

func (s *recordingSurface) UpdateMarker(m Marker) error {
	return s.do(fmt.Sprintf("update:%s:%s", m.PointID, m.Label))
}

func (s *recordingSurface) RemoveMarker(id string) error {
	return s.do("remove:" + id)
}

func (s *recordingSurface) DrawRoute(path []domain_models.Coordinates) error {
	s.lastRoute = path
	return s.do(fmt.Sprintf("route:%d", len(path)))
}

func (s *recordingSurface) ClearRoute() error {
	s.lastRoute = nil
	return s.do("clear_route")
}

func (s *recordingSurface) SetCenter(c domain_models.Coordinates) error {
	s.center = c
	return s.do("center")
}

func (s *recordingSurface) reset() { s.ops = nil }

func point(id string, lat, lng float64) domain_models.GrassPoint {
	return domain_models.GrassPoint{ID: id, Name: id, Type: "cafe", Address: id + " street", Lat: &lat, Lng: &lng}
}

func TestRenderer_InitialRender(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(RendererConfig{Surface: surface})

	noCoords := domain_models.GrassPoint{ID: "x", Name: "x"}
	scene := r.Render([]domain_models.GrassPoint{point("a", 0, 0), noCoords, point("b", 2, 4)})

	require.Len(t, scene.Markers, 2)
	assert.Equal(t, 1, scene.Markers[0].Index)
	assert.Equal(t, 2, scene.Markers[1].Index, "index counts coordinate-bearing points only")
	assert.Equal(t, []string{"add:a:1", "add:b:2", "route:2", "center"}, surface.ops)
	assert.Equal(t, domain_models.Coordinates{Lat: 1, Lng: 2}, surface.center)
	assert.False(t, scene.Empty)
}

func TestRenderer_MinimalDiff(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(RendererConfig{Surface: surface})

	a, b, c := point("a", 0, 0), point("b", 2, 2), point("c", 4, 4)
	r.Render([]domain_models.GrassPoint{a, b, c})
	surface.reset()

	// identical input draws nothing
	r.Render([]domain_models.GrassPoint{a, b, c})
	assert.Empty(t, surface.ops)

	// completing b only updates b
	b.Completed = true
	r.Render([]domain_models.GrassPoint{a, b, c})
	assert.Equal(t, []string{"update:b:✓"}, surface.ops)
	surface.reset()

	// dropping a removes it, renumbers the rest and redraws the route
	r.Render([]domain_models.GrassPoint{b, c})
	assert.Contains(t, surface.ops, "remove:a")
	assert.Contains(t, surface.ops, "update:c:2")
	assert.Contains(t, surface.ops, "route:2")
	assert.Contains(t, surface.ops, "center")
}

func TestRenderer_RouteNeedsTwoMarkers(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(RendererConfig{Surface: surface})

	r.Render([]domain_models.GrassPoint{point("a", 0, 0), point("b", 1, 1)})
	surface.reset()

	scene := r.Render([]domain_models.GrassPoint{point("a", 0, 0)})
	assert.Nil(t, scene.Route)
	assert.Equal(t, []string{"remove:b", "clear_route", "center"}, surface.ops)
}

func TestRenderer_EmptyClearsEverything(t *testing.T) {
	surface := newRecordingSurface()
	r := NewRenderer(RendererConfig{Surface: surface})
	r.Render([]domain_models.GrassPoint{point("a", 0, 0), point("b", 1, 1)})
	surface.reset()

	scene := r.Render([]domain_models.GrassPoint{{ID: "a"}, {ID: "b"}})
	assert.True(t, scene.Empty)
	assert.Empty(t, scene.Markers)
	assert.Nil(t, scene.Center)
	assert.ElementsMatch(t, []string{"remove:a", "remove:b", "clear_route"}, surface.ops)
}

func TestRenderer_MarkerStylePrecedence(t *testing.T) {
	r := NewRenderer(RendererConfig{})

	base := point("p", 1, 1)
	tests := []struct {
		name    string
		mutate  func(p *domain_models.GrassPoint)
		variant Variant
		label   string
		color   string
	}{
		{"numbered", func(p *domain_models.GrassPoint) {}, VariantNumbered, "1", colorNumbered},
		{"liked tint", func(p *domain_models.GrassPoint) { p.Status = domain_models.PointStatusLiked }, VariantNumbered, "1", colorLiked},
		{"disliked tint", func(p *domain_models.GrassPoint) { p.Status = domain_models.PointStatusDisliked }, VariantNumbered, "1", colorDisliked},
		{"completed beats status", func(p *domain_models.GrassPoint) {
			p.Completed = true
			p.Status = domain_models.PointStatusLiked
		}, VariantCompleted, "✓", colorCompleted},
		{"planted beats completed", func(p *domain_models.GrassPoint) {
			p.Completed = true
			p.GrassStatus = domain_models.GrassStatusPlanted
		}, VariantPlanted, "🌱", colorPlanted},
		{"removed", func(p *domain_models.GrassPoint) { p.GrassStatus = domain_models.GrassStatusRemoved }, VariantRemoved, "✂️", colorRemoved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			scene := r.Render([]domain_models.GrassPoint{p})
			require.Len(t, scene.Markers, 1)
			m := scene.Markers[0]
			assert.Equal(t, tt.variant, m.Variant)
			assert.Equal(t, tt.label, m.Label)
			assert.Equal(t, tt.color, m.Color)
			assert.Equal(t, "☕", m.Icon)
		})
	}
}

func TestRenderer_UnknownTypeFallsBackToOther(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	p := point("p", 1, 1)
	p.Type = "spaceport"

	scene := r.Render([]domain_models.GrassPoint{p})
	assert.Equal(t, "other", scene.Markers[0].Type)
	assert.Equal(t, itinerary.DefaultCatalog().PointType("other").Icon, scene.Markers[0].Icon)
}

func TestRenderer_SurfaceFailuresAreIsolated(t *testing.T) {
	surface := newRecordingSurface()
	surface.panicOn["add:a:1"] = true
	surface.failOn["route:2"] = true
	r := NewRenderer(RendererConfig{Surface: surface})

	var scene Scene
	require.NotPanics(t, func() {
		scene = r.Render([]domain_models.GrassPoint{point("a", 0, 0), point("b", 2, 2)})
	})
	assert.Len(t, scene.Markers, 2)
	assert.Equal(t, []string{"add:a:1", "add:b:2", "route:2", "center"}, surface.ops)

	// failed operations are retried on the next render
	delete(surface.panicOn, "add:a:1")
	delete(surface.failOn, "route:2")
	surface.reset()
	r.Render([]domain_models.GrassPoint{point("a", 0, 0), point("b", 2, 2)})
	assert.Equal(t, []string{"add:a:1", "route:2"}, surface.ops)
}

func TestRenderer_ClickRoutesMutations(t *testing.T) {
	store := itinerary.NewStore(nil, nil)
	store.AddMessage(domain_models.RoleAssistant, `[{"name":"A","type":"cafe","address":"a"},{"name":"B","address":"b"}]`)
	plan := store.State().CurrentPlan
	a, b := plan.GrassPoints[0].ID, plan.GrassPoints[1].ID
	store.AttachCoordinates(plan.ID, map[string]domain_models.Coordinates{a: {Lat: 1, Lng: 1}, b: {Lat: 2, Lng: 2}})

	r := NewRenderer(RendererConfig{
		Actions:  store,
		Navigate: func(p domain_models.GrassPoint) string { return "https://maps.example/?q=" + p.ID },
	})
	store.Subscribe(r.Observe)
	r.Render(store.State().CurrentPlan.GrassPoints)

	popup, err := r.Click(a, ActionOpen)
	require.NoError(t, err)
	assert.Equal(t, "A", popup.Name)
	assert.Equal(t, "咖啡馆", popup.TypeLabel)
	assert.Equal(t, "https://maps.example/?q="+a, popup.NavigateURL)

	popup, err = r.Click(a, ActionToggle)
	require.NoError(t, err)
	assert.True(t, popup.Completed)
	assert.True(t, store.State().CurrentPlan.GrassPoints[0].Completed)

	_, err = r.Click(b, ActionLike)
	assert.ErrorIs(t, err, utils.ErrNoSelection)

	_, err = r.Click(b, ActionSelect)
	require.NoError(t, err)
	assert.Equal(t, b, r.Scene().SelectedID)

	popup, err = r.Click(b, ActionPlant)
	require.NoError(t, err)
	assert.Equal(t, domain_models.GrassStatusPlanted, popup.GrassStatus)
	assert.Equal(t, b, r.Scene().SelectedID, "selection survives re-render")
	assert.Equal(t, VariantPlanted, r.Scene().Markers[1].Variant)

	_, err = r.Click(b, ActionDislike)
	require.NoError(t, err)
	got := store.State().CurrentPlan.GrassPoints[1]
	assert.Equal(t, domain_models.PointStatusDisliked, got.Status)
	assert.Equal(t, domain_models.GrassStatusPlanted, got.GrassStatus)

	_, err = r.Click("missing", ActionOpen)
	assert.ErrorIs(t, err, ErrMarkerNotFound)
	_, err = r.Click(a, Action("dance"))
	assert.ErrorIs(t, err, utils.ErrUnknownAction)
}

func TestRenderer_SelectionDroppedWhenPointVanishes(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	r.Render([]domain_models.GrassPoint{point("a", 0, 0), point("b", 1, 1)})
	_, err := r.Click("b", ActionSelect)
	require.NoError(t, err)

	scene := r.Render([]domain_models.GrassPoint{point("a", 0, 0)})
	assert.Empty(t, scene.SelectedID)
}

func TestScene_GeoJSON(t *testing.T) {
	r := NewRenderer(RendererConfig{})
	scene := r.Render([]domain_models.GrassPoint{point("a", 10, 20), point("b", 11, 21)})

	fc := scene.GeoJSON()
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	assert.Equal(t, [2]float64{20, 10}, fc.Features[0].Geometry.Coordinates, "GeoJSON is lng, lat")
	assert.Equal(t, "LineString", fc.Features[2].Geometry.Type)
}
