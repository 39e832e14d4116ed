package itinerary

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grassmap/internal/models/domain_models"
)

// Listener observes every effective store mutation, in mutation order.
// Listeners must not call mutating store methods synchronously.
type Listener func(prev, next domain_models.AppState)

// RequestKind separates the generation counters of independent network flows.
type RequestKind int

const (
	RequestChat RequestKind = iota
	RequestGeocode
)

type listenerEntry struct {
	id int
	fn Listener
}

// Store is the single writer of one session's AppState. Every effective
// mutation installs a new state value with a bumped Version; snapshots
// returned by State are never modified afterwards.
type Store struct {
	parser PlanParser
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	// dispatchMu keeps mutation and notification in one critical section so
	// listeners see transitions in the order they happened.
	dispatchMu sync.Mutex

	mu          sync.RWMutex
	state       domain_models.AppState
	generations map[RequestKind]uint64

	listenersMu  sync.RWMutex
	listeners    []listenerEntry
	nextListener int
}

func NewStore(parser PlanParser, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if parser == nil {
		parser = NewParser(nil, logger)
	}
	return &Store{
		parser:      parser,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
		state:       domain_models.AppState{ChatHistory: []domain_models.Message{}},
		generations: make(map[RequestKind]uint64),
	}
}

func (s *Store) State() domain_models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		for i, e := range s.listeners {
			if e.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// AddMessage appends a message to the chat log. Assistant messages are also
// run through the parser; a recognised itinerary replaces the current plan.
func (s *Store) AddMessage(role domain_models.Role, content string) domain_models.Message {
	msg, _ := s.appendMessage(role, content, nil)
	return msg
}

// AddReply appends an assistant message and clears the loading flag, but only
// while gen is still the current request of kind. It reports false for a
// superseded or cancelled request and leaves the state untouched.
func (s *Store) AddReply(kind RequestKind, gen uint64, content string) (domain_models.Message, bool) {
	return s.appendMessage(domain_models.RoleAssistant, content, func(next *domain_models.AppState) bool {
		if s.generations[kind] != gen {
			return false
		}
		next.Loading = false
		return true
	})
}

// appendMessage runs guard, when set, under the state lock before appending.
func (s *Store) appendMessage(role domain_models.Role, content string, guard func(next *domain_models.AppState) bool) (domain_models.Message, bool) {
	msg := domain_models.Message{
		ID:        s.newID(),
		Role:      role,
		Content:   content,
		Timestamp: s.now().UnixMilli(),
	}

	var plan *domain_models.TravelPlan
	if role == domain_models.RoleAssistant {
		plan = s.parser.ParsePlan(content)
	}

	ok := s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		next := prev
		if guard != nil && !guard(&next) {
			return prev, false
		}
		next.ChatHistory = append(prev.ChatHistory[:len(prev.ChatHistory):len(prev.ChatHistory)], msg)
		if plan != nil {
			next.CurrentPlan = plan
		}
		return next, true
	})
	return msg, ok
}

// UpdatePlan replaces the current plan outright.
func (s *Store) UpdatePlan(plan domain_models.TravelPlan) bool {
	return s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		if prev.CurrentPlan == nil {
			return prev, false
		}
		plan.GrassPoints = clonePoints(plan.GrassPoints)
		next := prev
		next.CurrentPlan = &plan
		return next, true
	})
}

func (s *Store) SetLoading(loading bool) bool {
	return s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		if prev.Loading == loading {
			return prev, false
		}
		next := prev
		next.Loading = loading
		return next, true
	})
}

func (s *Store) ToggleGrassPoint(id string) bool {
	return s.updatePoint(id, func(p *domain_models.GrassPoint) {
		p.Completed = !p.Completed
	})
}

// ReorderGrassPoints installs the caller's ordering. The caller is responsible
// for passing a permutation of the current points.
func (s *Store) ReorderGrassPoints(points []domain_models.GrassPoint) bool {
	return s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		if prev.CurrentPlan == nil {
			return prev, false
		}
		plan := *prev.CurrentPlan
		plan.GrassPoints = clonePoints(points)
		next := prev
		next.CurrentPlan = &plan
		return next, true
	})
}

func (s *Store) UpdateGrassPointTime(id, value string) bool {
	return s.updatePoint(id, func(p *domain_models.GrassPoint) {
		p.Time = value
	})
}

func (s *Store) UpdateGrassPointStatus(id string, status domain_models.PointStatus) bool {
	return s.updatePoint(id, func(p *domain_models.GrassPoint) {
		p.Status = status
	})
}

func (s *Store) UpdateGrassPointPhoto(id, photoURL string) bool {
	return s.updatePoint(id, func(p *domain_models.GrassPoint) {
		p.PhotoURL = photoURL
	})
}

// UpdateGrassPointComment appends comment to the point's comment list.
func (s *Store) UpdateGrassPointComment(id string, comment domain_models.Comment) bool {
	return s.updatePoint(id, func(p *domain_models.GrassPoint) {
		comments := make([]domain_models.Comment, len(p.Comments), len(p.Comments)+1)
		copy(comments, p.Comments)
		p.Comments = append(comments, comment)
	})
}

func (s *Store) UpdateGrassPointGrassStatus(id string, status domain_models.GrassStatus) bool {
	return s.updatePoint(id, func(p *domain_models.GrassPoint) {
		p.GrassStatus = status
	})
}

// AttachCoordinates merges geocoding output into the current plan by point id.
// Nothing happens when the plan has been replaced since planID was read.
func (s *Store) AttachCoordinates(planID string, coords map[string]domain_models.Coordinates) bool {
	return s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		if prev.CurrentPlan == nil || prev.CurrentPlan.ID != planID || len(coords) == 0 {
			return prev, false
		}
		points := clonePoints(prev.CurrentPlan.GrassPoints)
		changed := false
		for i := range points {
			c, ok := coords[points[i].ID]
			if !ok {
				continue
			}
			lat, lng := c.Lat, c.Lng
			points[i].Lat = &lat
			points[i].Lng = &lng
			changed = true
		}
		if !changed {
			return prev, false
		}
		plan := *prev.CurrentPlan
		plan.GrassPoints = points
		next := prev
		next.CurrentPlan = &plan
		return next, true
	})
}

// BeginRequest starts a new request of the given kind. Completions of older
// requests of the same kind are stale from then on.
func (s *Store) BeginRequest(kind RequestKind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[kind]++
	return s.generations[kind]
}

// BeginLoadingRequest is BeginRequest plus setting the loading flag, refused
// while a loading request is already in flight.
func (s *Store) BeginLoadingRequest(kind RequestKind) (uint64, bool) {
	var gen uint64
	ok := s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		if prev.Loading {
			return prev, false
		}
		s.generations[kind]++
		gen = s.generations[kind]
		next := prev
		next.Loading = true
		return next, true
	})
	return gen, ok
}

func (s *Store) IsCurrent(kind RequestKind, gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generations[kind] == gen
}

// CancelRequests marks every in-flight request of kind as stale and clears
// the loading flag. In-flight network calls are not interrupted.
func (s *Store) CancelRequests(kind RequestKind) {
	s.mu.Lock()
	s.generations[kind]++
	s.mu.Unlock()
	s.SetLoading(false)
}

func (s *Store) updatePoint(id string, apply func(p *domain_models.GrassPoint)) bool {
	return s.mutate(func(prev domain_models.AppState) (domain_models.AppState, bool) {
		if prev.CurrentPlan == nil {
			return prev, false
		}
		idx := indexOfPoint(prev.CurrentPlan.GrassPoints, id)
		if idx < 0 {
			return prev, false
		}
		points := clonePoints(prev.CurrentPlan.GrassPoints)
		apply(&points[idx])
		plan := *prev.CurrentPlan
		plan.GrassPoints = points
		next := prev
		next.CurrentPlan = &plan
		return next, true
	})
}

func (s *Store) mutate(fn func(prev domain_models.AppState) (domain_models.AppState, bool)) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	prev := s.state
	next, changed := fn(prev)
	if changed {
		next.Version = prev.Version + 1
		s.state = next
	}
	s.mu.Unlock()

	if changed {
		s.notify(prev, next)
	}
	return changed
}

func (s *Store) notify(prev, next domain_models.AppState) {
	s.listenersMu.RLock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		s.safeCall(l.fn, prev, next)
	}
}

func (s *Store) safeCall(fn Listener, prev, next domain_models.AppState) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("store listener panicked", zap.Any("panic", r))
		}
	}()
	fn(prev, next)
}

func indexOfPoint(points []domain_models.GrassPoint, id string) int {
	for i := range points {
		if points[i].ID == id {
			return i
		}
	}
	return -1
}

func clonePoints(points []domain_models.GrassPoint) []domain_models.GrassPoint {
	out := make([]domain_models.GrassPoint, len(points))
	copy(out, points)
	return out
}
