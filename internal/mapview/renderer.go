package mapview

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/models/domain_models"
	"grassmap/pkg/utils"
)

var ErrMarkerNotFound = errors.New("marker not found")

type Action string

const (
	ActionOpen    Action = "open"
	ActionToggle  Action = "toggle"
	ActionSelect  Action = "select"
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionPlant   Action = "plant"
	ActionRemove  Action = "remove"
)

// PointActions receives the mutations implied by marker interaction.
// *itinerary.Store satisfies it.
type PointActions interface {
	ToggleGrassPoint(id string) bool
	UpdateGrassPointStatus(id string, status domain_models.PointStatus) bool
	UpdateGrassPointGrassStatus(id string, status domain_models.GrassStatus) bool
}

// NavigateFunc builds the "navigate here" link shown in a popup.
type NavigateFunc func(p domain_models.GrassPoint) string

type Popup struct {
	PointID     string                    `json:"pointId"`
	Name        string                    `json:"name"`
	Type        string                    `json:"type"`
	TypeLabel   string                    `json:"typeLabel"`
	Icon        string                    `json:"icon"`
	TypeColor   string                    `json:"typeColor"`
	Address     string                    `json:"address"`
	Description string                    `json:"description,omitempty"`
	NavigateURL string                    `json:"navigateUrl,omitempty"`
	Completed   bool                      `json:"completed"`
	Selected    bool                      `json:"selected"`
	Status      domain_models.PointStatus `json:"status,omitempty"`
	GrassStatus domain_models.GrassStatus `json:"grassStatus,omitempty"`
}

type RendererConfig struct {
	Surface  Surface
	Catalog  *itinerary.Catalog
	Navigate NavigateFunc
	Actions  PointActions
	Logger   *zap.Logger
}

// Renderer keeps a Surface in sync with a list of grass points, sending only
// the operations needed to move from what is drawn to what is wanted.
type Renderer struct {
	surface  Surface
	catalog  *itinerary.Catalog
	navigate NavigateFunc
	actions  PointActions
	logger   *zap.Logger

	mu       sync.Mutex
	points   []domain_models.GrassPoint
	drawn    map[string]Marker
	route    []domain_models.Coordinates
	center   *domain_models.Coordinates
	selected string
	scene    Scene
}

func NewRenderer(cfg RendererConfig) *Renderer {
	if cfg.Surface == nil {
		cfg.Surface = NopSurface{}
	}
	if cfg.Catalog == nil {
		cfg.Catalog = itinerary.DefaultCatalog()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Renderer{
		surface:  cfg.Surface,
		catalog:  cfg.Catalog,
		navigate: cfg.Navigate,
		actions:  cfg.Actions,
		logger:   cfg.Logger,
		drawn:    make(map[string]Marker),
		scene:    Scene{Markers: []Marker{}, Empty: true},
	}
}

// SetActions wires the mutation target after construction, for callers that
// build the renderer before the store it listens to.
func (r *Renderer) SetActions(a PointActions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = a
}

// Observe is a store Listener. Renders are skipped when the plan value did not change.
func (r *Renderer) Observe(prev, next domain_models.AppState) {
	if prev.CurrentPlan == next.CurrentPlan {
		return
	}
	var points []domain_models.GrassPoint
	if next.CurrentPlan != nil {
		points = next.CurrentPlan.GrassPoints
	}
	r.Render(points)
}

func (r *Renderer) Render(points []domain_models.GrassPoint) Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderLocked(points)
}

// Scene returns the most recent render result.
func (r *Renderer) Scene() Scene {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scene
}

// Points returns the coordinate-bearing points in render order.
func (r *Renderer) Points() []domain_models.GrassPoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain_models.GrassPoint, 0, len(r.points))
	for _, p := range r.points {
		if p.HasCoordinates() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Renderer) renderLocked(points []domain_models.GrassPoint) Scene {
	r.points = points

	desired := make([]Marker, 0, len(points))
	for _, p := range points {
		pos, ok := p.Coordinates()
		if !ok {
			continue
		}
		desired = append(desired, r.markerFor(p, len(desired)+1, pos))
	}

	if r.selected != "" && !containsMarker(desired, r.selected) {
		r.selected = ""
		for i := range desired {
			desired[i].Selected = false
		}
	}

	wanted := make(map[string]struct{}, len(desired))
	for _, m := range desired {
		wanted[m.PointID] = struct{}{}
	}
	for id := range r.drawn {
		if _, ok := wanted[id]; ok {
			continue
		}
		id := id
		if r.apply("remove_marker", func() error { return r.surface.RemoveMarker(id) }) {
			delete(r.drawn, id)
		}
	}
	for _, m := range desired {
		m := m
		old, exists := r.drawn[m.PointID]
		switch {
		case !exists:
			if r.apply("add_marker", func() error { return r.surface.AddMarker(m) }) {
				r.drawn[m.PointID] = m
			}
		case old != m:
			if r.apply("update_marker", func() error { return r.surface.UpdateMarker(m) }) {
				r.drawn[m.PointID] = m
			}
		}
	}

	positions := make([]domain_models.Coordinates, 0, len(desired))
	for _, m := range desired {
		positions = append(positions, m.Position)
	}

	var path []domain_models.Coordinates
	if len(positions) >= 2 {
		path = positions
	}
	if !sameCoords(path, r.route) {
		if path != nil {
			if r.apply("draw_route", func() error { return r.surface.DrawRoute(path) }) {
				r.route = path
			}
		} else if r.apply("clear_route", r.surface.ClearRoute) {
			r.route = nil
		}
	}

	center, ok := utils.Center(positions)
	switch {
	case !ok:
		r.center = nil
	case r.center == nil || *r.center != center:
		if r.apply("set_center", func() error { return r.surface.SetCenter(center) }) {
			r.center = &center
		}
	}

	r.scene = Scene{
		Markers:    desired,
		Route:      path,
		SelectedID: r.selected,
		Empty:      len(desired) == 0,
	}
	if ok {
		c := center
		r.scene.Center = &c
	}
	return r.scene
}

func (r *Renderer) markerFor(p domain_models.GrassPoint, index int, pos domain_models.Coordinates) Marker {
	t := r.catalog.PointType(p.Type)
	m := Marker{
		PointID:   p.ID,
		Index:     index,
		Position:  pos,
		Name:      p.Name,
		Type:      t.Key,
		Icon:      t.Icon,
		TypeColor: t.Color,
		Selected:  p.ID == r.selected,
	}

	switch {
	case p.GrassStatus == domain_models.GrassStatusPlanted:
		m.Variant, m.Label, m.Color = VariantPlanted, "🌱", colorPlanted
	case p.GrassStatus == domain_models.GrassStatusRemoved:
		m.Variant, m.Label, m.Color = VariantRemoved, "✂️", colorRemoved
	case p.Completed:
		m.Variant, m.Label, m.Color = VariantCompleted, "✓", colorCompleted
	default:
		m.Variant, m.Label, m.Color = VariantNumbered, strconv.Itoa(index), colorNumbered
		switch p.Status {
		case domain_models.PointStatusLiked:
			m.Color = colorLiked
		case domain_models.PointStatusDisliked:
			m.Color = colorDisliked
		}
	}
	return m
}

// apply runs one surface operation, containing any error or panic so the
// remaining operations of the render still happen. It reports success.
func (r *Renderer) apply(op string, fn func() error) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("map surface panicked", zap.String("op", op), zap.Any("panic", rec))
			ok = false
		}
	}()
	if err := fn(); err != nil {
		r.logger.Warn("map surface operation failed", zap.String("op", op), zap.Error(err))
		return false
	}
	return true
}

// Click handles an interaction with the marker for pointID and returns the
// popup to show afterwards. Sentiment and grass actions apply to the
// selected marker.
func (r *Renderer) Click(pointID string, action Action) (*Popup, error) {
	r.mu.Lock()
	actions := r.actions
	target := pointID
	switch action {
	case ActionOpen, ActionToggle, ActionSelect:
		if _, ok := r.findLocked(pointID); !ok {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrMarkerNotFound, pointID)
		}
		if action == ActionSelect {
			r.selected = pointID
			r.renderLocked(r.points)
		}
	case ActionLike, ActionDislike, ActionPlant, ActionRemove:
		if r.selected == "" {
			r.mu.Unlock()
			return nil, utils.ErrNoSelection
		}
		target = r.selected
	default:
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", utils.ErrUnknownAction, action)
	}
	r.mu.Unlock()

	// Mutations run unlocked: the store notifies this renderer synchronously.
	if actions != nil {
		switch action {
		case ActionToggle:
			actions.ToggleGrassPoint(target)
		case ActionLike:
			actions.UpdateGrassPointStatus(target, domain_models.PointStatusLiked)
		case ActionDislike:
			actions.UpdateGrassPointStatus(target, domain_models.PointStatusDisliked)
		case ActionPlant:
			actions.UpdateGrassPointGrassStatus(target, domain_models.GrassStatusPlanted)
		case ActionRemove:
			actions.UpdateGrassPointGrassStatus(target, domain_models.GrassStatusRemoved)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.findLocked(target)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMarkerNotFound, target)
	}
	return r.popupFor(p), nil
}

func (r *Renderer) findLocked(id string) (domain_models.GrassPoint, bool) {
	for _, p := range r.points {
		if p.ID == id && p.HasCoordinates() {
			return p, true
		}
	}
	return domain_models.GrassPoint{}, false
}

func (r *Renderer) popupFor(p domain_models.GrassPoint) *Popup {
	t := r.catalog.PointType(p.Type)
	popup := &Popup{
		PointID:     p.ID,
		Name:        p.Name,
		Type:        t.Key,
		TypeLabel:   t.Label,
		Icon:        t.Icon,
		TypeColor:   t.Color,
		Address:     p.Address,
		Description: p.Description,
		Completed:   p.Completed,
		Selected:    p.ID == r.selected,
		Status:      p.Status,
		GrassStatus: p.GrassStatus,
	}
	if r.navigate != nil {
		popup.NavigateURL = r.navigate(p)
	}
	return popup
}

func containsMarker(markers []Marker, id string) bool {
	for _, m := range markers {
		if m.PointID == id {
			return true
		}
	}
	return false
}

func sameCoords(a, b []domain_models.Coordinates) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
