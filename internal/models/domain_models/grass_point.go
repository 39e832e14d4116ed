package domain_models

type PointStatus string

const (
	PointStatusNone     PointStatus = "none"
	PointStatusLiked    PointStatus = "liked"
	PointStatusDisliked PointStatus = "disliked"
)

type GrassStatus string

const (
	GrassStatusNone    GrassStatus = "none"
	GrassStatusPlanted GrassStatus = "planted"
	GrassStatusRemoved GrassStatus = "removed"
)

// DefaultPointType is used when the model omits a point's type or gives one
// the catalog does not know.
const DefaultPointType = "other"

type Comment struct {
	Text string `json:"text"`
	Time string `json:"time,omitempty"`
	User string `json:"user,omitempty"`
}

type GrassPoint struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"`
	Address     string      `json:"address"`
	Description string      `json:"description,omitempty"`
	Completed   bool        `json:"completed"`
	Lat         *float64    `json:"lat,omitempty"`
	Lng         *float64    `json:"lng,omitempty"`
	Time        string      `json:"time,omitempty"`
	Status      PointStatus `json:"status,omitempty"`
	GrassStatus GrassStatus `json:"grassStatus,omitempty"`
	PhotoURL    string      `json:"photoUrl,omitempty"`
	Comments    []Comment   `json:"comments,omitempty"`
}

// HasCoordinates reports whether the point has been geocoded.
func (p GrassPoint) HasCoordinates() bool {
	return p.Lat != nil && p.Lng != nil
}

func (p GrassPoint) Coordinates() (Coordinates, bool) {
	if !p.HasCoordinates() {
		return Coordinates{}, false
	}
	return Coordinates{Lat: *p.Lat, Lng: *p.Lng}, true
}

type TravelPlan struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	City        string       `json:"city"`
	GrassPoints []GrassPoint `json:"grassPoints"`
}

// CompletedCount returns how many points are marked done.
func (p *TravelPlan) CompletedCount() int {
	if p == nil {
		return 0
	}
	n := 0
	for _, point := range p.GrassPoints {
		if point.Completed {
			n++
		}
	}
	return n
}

// AllCompleted is true iff the plan has at least one point and every point is done.
func (p *TravelPlan) AllCompleted() bool {
	if p == nil || len(p.GrassPoints) == 0 {
		return false
	}
	return p.CompletedCount() == len(p.GrassPoints)
}
