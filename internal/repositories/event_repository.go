package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbm "grassmap/internal/models/db_models"
)

type EventCount struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event *dbm.AnalyticsEvent) error
	// CountByName aggregates events created at or after since, busiest first.
	CountByName(ctx context.Context, since time.Time) ([]EventCount, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(ctx context.Context, event *dbm.AnalyticsEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) CountByName(ctx context.Context, since time.Time) ([]EventCount, error) {
	var rows []EventCount
	err := r.db.WithContext(ctx).
		Model(&dbm.AnalyticsEvent{}).
		Select("name, COUNT(*) AS total").
		Where("created_at >= ?", since.Unix()).
		Group("name").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

type memoryEventRepository struct {
	mu     sync.RWMutex
	events []dbm.AnalyticsEvent
	now    func() int64
}

// NewMemoryEventRepository is the in-process event log used without a database.
func NewMemoryEventRepository() EventRepository {
	return &memoryEventRepository{now: nowUnix}
}

func (r *memoryEventRepository) CreateEvent(_ context.Context, event *dbm.AnalyticsEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = r.now()
	event.UpdatedAt = event.CreatedAt
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryEventRepository) CountByName(_ context.Context, since time.Time) ([]EventCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	totals := map[string]int64{}
	for _, e := range r.events {
		if e.CreatedAt >= since.Unix() {
			totals[e.Name]++
		}
	}
	rows := make([]EventCount, 0, len(totals))
	for name, total := range totals {
		rows = append(rows, EventCount{Name: name, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}

func nowUnix() int64 { return time.Now().Unix() }
