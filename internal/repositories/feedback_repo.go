package repositories

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"grassmap/internal/models/db_models"
)

type FeedbackRepositoryInterface interface {
	CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error
	ListFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error)
}

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *FeedbackRepository) ListFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error) {
	var feedbacks []db_models.Feedback
	err := r.db.WithContext(ctx).
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// MemoryFeedbackRepository keeps feedback in process memory. It backs the
// service when no database is configured.
type MemoryFeedbackRepository struct {
	mu    sync.RWMutex
	items []db_models.Feedback
	now   func() int64
}

func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{now: nowUnix}
}

func (r *MemoryFeedbackRepository) CreateFeedback(_ context.Context, feedback *db_models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}
	feedback.CreatedAt = r.now()
	feedback.UpdatedAt = feedback.CreatedAt
	r.items = append(r.items, *feedback)
	return nil
}

func (r *MemoryFeedbackRepository) ListFeedback(_ context.Context, page, pageSize int) ([]db_models.Feedback, error) {
	r.mu.RLock()
	sorted := make([]db_models.Feedback, len(r.items))
	copy(sorted, r.items)
	r.mu.RUnlock()

	// newest first, insertion order breaks ties
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt > sorted[j].CreatedAt })

	return paginate(sorted, page, pageSize), nil
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
