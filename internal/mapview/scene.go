package mapview

import (
	"grassmap/internal/models/domain_models"
)

type Variant string

const (
	VariantNumbered  Variant = "numbered"
	VariantCompleted Variant = "completed"
	VariantPlanted   Variant = "planted"
	VariantRemoved   Variant = "removed"
)

const (
	colorNumbered  = "#3B82F6"
	colorCompleted = "#10B981"
	colorLiked     = "#EC4899"
	colorDisliked  = "#F97316"
	colorPlanted   = "#22C55E"
	colorRemoved   = "#9CA3AF"
)

// Marker is one drawn point. It is comparable so the renderer can diff by value.
type Marker struct {
	PointID   string                    `json:"pointId"`
	Index     int                       `json:"index"`
	Position  domain_models.Coordinates `json:"position"`
	Name      string                    `json:"name"`
	Type      string                    `json:"type"`
	Icon      string                    `json:"icon"`
	TypeColor string                    `json:"typeColor"`
	Variant   Variant                   `json:"variant"`
	Label     string                    `json:"label"`
	Color     string                    `json:"color"`
	Selected  bool                      `json:"selected"`
}

type Scene struct {
	Markers    []Marker                    `json:"markers"`
	Route      []domain_models.Coordinates `json:"route,omitempty"`
	Center     *domain_models.Coordinates  `json:"center,omitempty"`
	SelectedID string                      `json:"selectedId,omitempty"`
	// Empty means no point has coordinates yet; clients show the prompt state.
	Empty bool `json:"empty"`
}

type Feature struct {
	Type       string                 `json:"type"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// GeoJSON renders the scene as point features plus a route LineString.
// Positions use GeoJSON's [lng, lat] order.
func (s Scene) GeoJSON() FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(s.Markers)+1)}
	for _, m := range s.Markers {
		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: [2]float64{m.Position.Lng, m.Position.Lat},
			},
			Properties: map[string]interface{}{
				"id":       m.PointID,
				"index":    m.Index,
				"name":     m.Name,
				"type":     m.Type,
				"icon":     m.Icon,
				"variant":  string(m.Variant),
				"label":    m.Label,
				"color":    m.Color,
				"selected": m.Selected,
			},
		})
	}
	if len(s.Route) >= 2 {
		line := make([][2]float64, 0, len(s.Route))
		for _, c := range s.Route {
			line = append(line, [2]float64{c.Lng, c.Lat})
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "LineString", Coordinates: line},
			Properties: map[string]interface{}{"kind": "route"},
		})
	}
	return fc
}
