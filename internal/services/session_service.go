package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/mapview"
	"grassmap/internal/metrics"
	"grassmap/internal/models/domain_models"
	"grassmap/internal/realtime"
	mem "grassmap/pkg/memcache"
	"grassmap/pkg/utils"
)

const DefaultSessionTTL = 2 * time.Hour

// Session is one client's planning workspace: its store plus the renderer,
// completion observer and websocket hub listening to it.
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *itinerary.Store
	Renderer  *mapview.Renderer
	Hub       *realtime.Hub

	observer    *itinerary.CompletionObserver
	unsubscribe []func()

	mu        sync.RWMutex
	shareCard *domain_models.ShareCard
	location  *domain_models.UserLocation
}

func (s *Session) ShareCard() (*domain_models.ShareCard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.shareCard == nil {
		return nil, false
	}
	card := *s.shareCard
	return &card, true
}

func (s *Session) setShareCard(card domain_models.ShareCard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shareCard = &card
}

func (s *Session) Location() *domain_models.UserLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return nil
	}
	loc := *s.location
	return &loc
}

func (s *Session) SetLocation(loc domain_models.UserLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = &loc
}

// close detaches listeners, cancels a pending share prompt and drops
// websocket clients.
func (s *Session) close() {
	for _, unsub := range s.unsubscribe {
		unsub()
	}
	s.observer.Close()
	s.Hub.Close()
}

// MapView is the renderer's scene with its GeoJSON form.
type MapView struct {
	Scene   mapview.Scene              `json:"scene"`
	GeoJSON mapview.FeatureCollection  `json:"geojson"`
	Points  []domain_models.GrassPoint `json:"points"`
	Center  *domain_models.Coordinates `json:"center,omitempty"`
}

type SessionServiceInterface interface {
	Create(ctx context.Context) (*Session, error)
	Get(id string) (*Session, error)
	Delete(id string)
	Count() int
	GeocodePlan(ctx context.Context, sess *Session, opts GeocodeOptions) ([]domain_models.GeocodeResult, error)
	ShareCard(sess *Session) (*domain_models.ShareCard, error)
	MapView(sess *Session) MapView
	Close()
}

type SessionConfig struct {
	TTL        time.Duration
	ShareDelay time.Duration
}

type SessionService struct {
	cfg       SessionConfig
	catalog   *itinerary.Catalog
	parser    itinerary.PlanParser
	geocoder  GeocodeServiceInterface
	share     *ShareService
	analytics AnalyticsServiceInterface
	metrics   *metrics.Metrics
	logger    *zap.Logger

	sessions *mem.TTLStore[*Session]
	mu       sync.Mutex
	live     map[string]*Session
}

func NewSessionService(
	cfg SessionConfig,
	catalog *itinerary.Catalog,
	geocoder GeocodeServiceInterface,
	share *ShareService,
	analytics AnalyticsServiceInterface,
	m *metrics.Metrics,
	logger *zap.Logger,
) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if catalog == nil {
		catalog = itinerary.DefaultCatalog()
	}
	if share == nil {
		share = NewShareService(catalog, logger)
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{
		cfg:       cfg,
		catalog:   catalog,
		parser:    itinerary.NewParser(itinerary.NewCatalogHeuristics(catalog), logger),
		geocoder:  geocoder,
		share:     share,
		analytics: analytics,
		metrics:   m,
		logger:    logger,
		sessions:  mem.NewTTLStore[*Session](cfg.TTL, true),
		live:      make(map[string]*Session),
	}
	s.sessions.OnEvicted(func(id string, sess *Session) {
		s.mu.Lock()
		delete(s.live, id)
		s.mu.Unlock()
		sess.close()
		s.metrics.ActiveSessions.Dec()
		s.logger.Info("session closed", zap.String("session_id", id))
	})
	return s
}

func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	logger := s.logger.With(zap.String("session_id", id))

	sess := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Store:     itinerary.NewStore(s.parser, logger),
	}
	sess.Hub = realtime.NewHub(id, nil, logger)
	sess.Renderer = mapview.NewRenderer(mapview.RendererConfig{
		Surface: sess.Hub,
		Catalog: s.catalog,
		Navigate: func(p domain_models.GrassPoint) string {
			loc := DefaultUserLocation()
			if l := sess.Location(); l != nil {
				loc = *l
			}
			c, _ := p.Coordinates()
			return NavigationURL(loc, p.Address, &c)
		},
		Actions: sess.Store,
		Logger:  logger,
	})
	sess.Hub.SetSnapshot(func() interface{} { return sess.Renderer.Scene() })
	sess.observer = itinerary.NewCompletionObserver(itinerary.CompletionConfig{
		ShareDelay:  s.cfg.ShareDelay,
		OnCelebrate: func(ev itinerary.CompletionEvent) { s.celebrate(sess, ev) },
		OnShare:     func(ev itinerary.CompletionEvent) { s.offerShare(sess, ev) },
		Logger:      logger,
	})
	sess.unsubscribe = []func(){
		sess.Store.Subscribe(sess.Renderer.Observe),
		sess.Store.Subscribe(sess.observer.Observe),
	}

	s.mu.Lock()
	s.live[id] = sess
	s.mu.Unlock()
	s.sessions.Set(id, sess)
	s.metrics.ActiveSessions.Inc()
	logger.Info("session created")
	return sess, nil
}

func (s *SessionService) Get(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrSessionNotFound, id)
	}
	return sess, nil
}

func (s *SessionService) Delete(id string) {
	s.sessions.Delete(id)
}

func (s *SessionService) Count() int {
	return s.sessions.Count()
}

// Close ends every live session.
func (s *SessionService) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.live))
	for id := range s.live {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.sessions.Delete(id)
	}
}

// GeocodePlan geocodes the current plan's addresses and attaches the
// resolved coordinates by point id. A plan replaced or a newer geocode
// started while the lookups ran makes the result stale.
func (s *SessionService) GeocodePlan(ctx context.Context, sess *Session, opts GeocodeOptions) ([]domain_models.GeocodeResult, error) {
	if s.geocoder == nil {
		return nil, utils.ErrNoGeocodeProvider
	}
	state := sess.Store.State()
	if state.CurrentPlan == nil {
		return nil, utils.ErrPlanNotFound
	}
	plan := *state.CurrentPlan
	gen := sess.Store.BeginRequest(itinerary.RequestGeocode)

	if opts.UserLocation == nil {
		opts.UserLocation = sess.Location()
	}
	addresses := make([]string, len(plan.GrassPoints))
	for i, p := range plan.GrassPoints {
		addresses[i] = p.Address
	}

	results, err := s.geocoder.Geocode(ctx, addresses, opts)
	if err != nil {
		return nil, err
	}
	if !sess.Store.IsCurrent(itinerary.RequestGeocode, gen) {
		return nil, utils.ErrStaleResponse
	}

	coords := make(map[string]domain_models.Coordinates, len(results))
	for i, r := range results {
		if r.Success && r.Lat != nil && r.Lng != nil {
			coords[plan.GrassPoints[i].ID] = domain_models.Coordinates{Lat: *r.Lat, Lng: *r.Lng}
		}
	}
	if len(coords) > 0 {
		if current := sess.Store.State().CurrentPlan; current == nil || current.ID != plan.ID {
			return nil, utils.ErrStaleResponse
		}
		sess.Store.AttachCoordinates(plan.ID, coords)
	}
	return results, nil
}

func (s *SessionService) ShareCard(sess *Session) (*domain_models.ShareCard, error) {
	card, ok := sess.ShareCard()
	if !ok {
		return nil, utils.ErrShareNotReady
	}
	return card, nil
}

func (s *SessionService) MapView(sess *Session) MapView {
	scene := sess.Renderer.Scene()
	return MapView{
		Scene:   scene,
		GeoJSON: scene.GeoJSON(),
		Points:  sess.Renderer.Points(),
		Center:  scene.Center,
	}
}

func (s *SessionService) celebrate(sess *Session, ev itinerary.CompletionEvent) {
	stats := domain_models.ShareStats{
		TotalPoints:     len(ev.Plan.GrassPoints),
		CompletedPoints: ev.Plan.CompletedCount(),
		Duration:        DurationBucket(len(ev.Plan.GrassPoints)),
	}
	s.metrics.TripsCompleted.Inc()
	if err := sess.Hub.Publish(realtime.Event{Type: realtime.EventCelebrate, Data: stats}); err != nil {
		s.logger.Debug("celebration not delivered", zap.String("session_id", sess.ID), zap.Error(err))
	}

	if s.analytics == nil {
		return
	}
	// Off the store's dispatch path.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.analytics.LogEvent(ctx, AnalyticsEventInput{
			Name:      EventTripCompleted,
			SessionID: sess.ID,
			Properties: map[string]interface{}{
				"planId": ev.Plan.ID,
				"city":   ev.Plan.City,
				"points": stats.TotalPoints,
			},
		})
		if err != nil {
			s.logger.Warn("failed to record trip completion", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}()
}

func (s *SessionService) offerShare(sess *Session, ev itinerary.CompletionEvent) {
	card := s.share.BuildCard(ev.Plan, ev.CompletedAt)
	sess.setShareCard(card)
	if err := sess.Hub.Publish(realtime.Event{Type: realtime.EventShare, Data: card}); err != nil {
		s.logger.Debug("share card not delivered", zap.String("session_id", sess.ID), zap.Error(err))
	}
}
