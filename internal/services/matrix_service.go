package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"grassmap/internal/models/domain_models"
	mem "grassmap/pkg/memcache"
	"grassmap/pkg/utils"
)

type MatrixPoint struct {
	ID  string
	Lat float64
	Lng float64
}

type MatrixEdge struct {
	DistanceMeters int
}

type DistanceMatrix map[string]map[string]MatrixEdge

// Pair cache keyed by (mode, A, B); point ids are stable for a plan's lifetime.
type MatrixPairCache struct {
	store mem.Store[MatrixEdge]
}

func NewMatrixPairCache(ttl time.Duration) *MatrixPairCache {
	return &MatrixPairCache{store: mem.NewTTLStore[MatrixEdge](ttl, false)}
}

func pairKey(mode, a, b string) string {
	return mode + "|" + a + "|" + b
}

func (c *MatrixPairCache) Get(mode, a, b string) (MatrixEdge, bool) {
	return c.store.Get(pairKey(mode, a, b))
}

func (c *MatrixPairCache) Set(mode, a, b string, v MatrixEdge) {
	c.store.Set(pairKey(mode, a, b), v)
}

// -------------- Mapbox Matrix client (distance-only) ---------------

type DistanceMatrixService interface {
	ComputeDistances(ctx context.Context, points []MatrixPoint) (DistanceMatrix, error)
}

type MapboxMatrixClient struct {
	HTTP        *http.Client
	AccessToken string
	BaseURL     string
	Cache       *MatrixPairCache
	Profile     string // "driving"
}

func NewMapboxMatrixClient(token string, cache *MatrixPairCache) *MapboxMatrixClient {
	if cache == nil {
		cache = NewMatrixPairCache(7 * 24 * time.Hour)
	}
	return &MapboxMatrixClient{
		HTTP:        &http.Client{Timeout: 15 * time.Second},
		AccessToken: token,
		BaseURL:     defaultMapboxBaseURL,
		Cache:       cache,
		Profile:     "driving",
	}
}

func (c *MapboxMatrixClient) ComputeDistances(ctx context.Context, points []MatrixPoint) (DistanceMatrix, error) {
	n := len(points)
	if n == 0 {
		return DistanceMatrix{}, nil
	}

	mode := c.Profile
	mat := make(DistanceMatrix, n)
	needCall := false

	for _, p := range points {
		mat[p.ID] = make(map[string]MatrixEdge, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				mat[points[i].ID][points[j].ID] = MatrixEdge{DistanceMeters: 0}
				continue
			}
			if v, ok := c.Cache.Get(mode, points[i].ID, points[j].ID); ok {
				mat[points[i].ID][points[j].ID] = v
			} else {
				needCall = true
			}
		}
	}

	if !needCall {
		return mat, nil
	}

	coords := make([]string, 0, n)
	for _, p := range points {
		coords = append(coords, fmt.Sprintf("%f,%f", p.Lng, p.Lat))
	}
	endpoint := fmt.Sprintf("%s/directions-matrix/v1/mapbox/%s/%s?annotations=distance&sources=all&destinations=all&access_token=%s",
		c.BaseURL, mode, strings.Join(coords, ";"), c.AccessToken)

	body, err := getJSON(ctx, c.HTTP, endpoint)
	if err != nil {
		return nil, fmt.Errorf("mapbox matrix: %w", err)
	}
	distances := gjson.GetBytes(body, "distances").Array()

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dM := 0
			if i < len(distances) {
				row := distances[i].Array()
				if j < len(row) && row[j].Type == gjson.Number {
					dM = int(row[j].Float() + 0.5)
				}
			}
			edge := MatrixEdge{DistanceMeters: dM}
			mat[points[i].ID][points[j].ID] = edge
			c.Cache.Set(mode, points[i].ID, points[j].ID, edge)
		}
	}

	return mat, nil
}

// Leg is the hop from one mapped point to the next, in route order.
type Leg struct {
	FromID        string  `json:"fromId"`
	ToID          string  `json:"toId"`
	StraightKm    float64 `json:"straightKm"`
	DrivingMeters *int    `json:"drivingMeters,omitempty"`
}

type RouteDistances struct {
	Legs          []Leg   `json:"legs"`
	TotalKm       float64 `json:"totalKm"`
	DrivingMeters *int    `json:"drivingMeters,omitempty"`
}

type RouteDistanceService struct {
	matrix DistanceMatrixService
	logger *zap.Logger
}

// NewRouteDistanceService computes leg distances. matrix may be nil, in which
// case only straight-line distances are reported.
func NewRouteDistanceService(matrix DistanceMatrixService, logger *zap.Logger) *RouteDistanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteDistanceService{matrix: matrix, logger: logger}
}

func (s *RouteDistanceService) Compute(ctx context.Context, points []domain_models.GrassPoint) RouteDistances {
	mapped := make([]MatrixPoint, 0, len(points))
	for _, p := range points {
		if c, ok := p.Coordinates(); ok {
			mapped = append(mapped, MatrixPoint{ID: p.ID, Lat: c.Lat, Lng: c.Lng})
		}
	}

	out := RouteDistances{Legs: []Leg{}}
	if len(mapped) < 2 {
		return out
	}

	var mat DistanceMatrix
	if s.matrix != nil {
		m, err := s.matrix.ComputeDistances(ctx, mapped)
		if err != nil {
			s.logger.Warn("driving distances unavailable", zap.Error(err))
		} else {
			mat = m
		}
	}

	totalDriving := 0
	for i := 1; i < len(mapped); i++ {
		a, b := mapped[i-1], mapped[i]
		leg := Leg{
			FromID: a.ID,
			ToID:   b.ID,
			StraightKm: utils.HaversineKm(
				domain_models.Coordinates{Lat: a.Lat, Lng: a.Lng},
				domain_models.Coordinates{Lat: b.Lat, Lng: b.Lng}),
		}
		if mat != nil {
			if edge, ok := mat[a.ID][b.ID]; ok {
				d := edge.DistanceMeters
				leg.DrivingMeters = &d
				totalDriving += d
			}
		}
		out.TotalKm += leg.StraightKm
		out.Legs = append(out.Legs, leg)
	}
	if mat != nil {
		out.DrivingMeters = &totalDriving
	}
	return out
}
