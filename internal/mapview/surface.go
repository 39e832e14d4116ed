package mapview

import "grassmap/internal/models/domain_models"

// Surface is the drawing target a Renderer drives, e.g. a websocket client
// running a map widget.
type Surface interface {
	AddMarker(m Marker) error
	UpdateMarker(m Marker) error
	RemoveMarker(pointID string) error
	DrawRoute(path []domain_models.Coordinates) error
	ClearRoute() error
	SetCenter(center domain_models.Coordinates) error
}

// NopSurface discards every operation.
type NopSurface struct{}

func (NopSurface) AddMarker(Marker) error                      { return nil }
func (NopSurface) UpdateMarker(Marker) error                   { return nil }
func (NopSurface) RemoveMarker(string) error                   { return nil }
func (NopSurface) DrawRoute([]domain_models.Coordinates) error { return nil }
func (NopSurface) ClearRoute() error                           { return nil }
func (NopSurface) SetCenter(domain_models.Coordinates) error   { return nil }
