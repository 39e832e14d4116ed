package itinerary

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"grassmap/internal/models/domain_models"
)

const DefaultShareDelay = 2 * time.Second

// CompletionEvent carries the snapshot that completed the trip.
type CompletionEvent struct {
	Plan        domain_models.TravelPlan
	CompletedAt time.Time
}

type CompletionConfig struct {
	// ShareDelay separates the celebration from the share prompt. Zero means DefaultShareDelay.
	ShareDelay  time.Duration
	OnCelebrate func(CompletionEvent)
	OnShare     func(CompletionEvent)
	Logger      *zap.Logger
}

type timer interface {
	Stop() bool
}

// CompletionObserver watches store transitions and fires once each time the
// current plan goes from not-all-completed to all-completed.
type CompletionObserver struct {
	cfg       CompletionConfig
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) timer

	mu       sync.Mutex
	lastSeen bool
	pending  map[timer]struct{}
	closed   bool
}

func NewCompletionObserver(cfg CompletionConfig) *CompletionObserver {
	if cfg.ShareDelay <= 0 {
		cfg.ShareDelay = DefaultShareDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &CompletionObserver{
		cfg: cfg,
		now: time.Now,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		pending: make(map[timer]struct{}),
	}
}

// Observe is a store Listener.
func (o *CompletionObserver) Observe(_, next domain_models.AppState) {
	complete := next.CurrentPlan.AllCompleted()

	o.mu.Lock()
	rising := complete && !o.lastSeen
	o.lastSeen = complete
	if !rising || o.closed {
		o.mu.Unlock()
		return
	}

	event := CompletionEvent{
		Plan:        *next.CurrentPlan,
		CompletedAt: o.now(),
	}

	var t timer
	t = o.afterFunc(o.cfg.ShareDelay, func() {
		o.mu.Lock()
		_, live := o.pending[t]
		delete(o.pending, t)
		o.mu.Unlock()
		if !live {
			return
		}
		o.cfg.Logger.Info("share prompt", zap.String("plan_id", event.Plan.ID))
		if o.cfg.OnShare != nil {
			o.cfg.OnShare(event)
		}
	})
	o.pending[t] = struct{}{}
	o.mu.Unlock()

	o.cfg.Logger.Info("trip completed",
		zap.String("plan_id", event.Plan.ID),
		zap.Int("points", len(event.Plan.GrassPoints)))
	if o.cfg.OnCelebrate != nil {
		o.cfg.OnCelebrate(event)
	}
}

// Close cancels share prompts that have not fired yet.
func (o *CompletionObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	for t := range o.pending {
		t.Stop()
		delete(o.pending, t)
	}
}
