package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"grassmap/internal/metrics"
	dbm "grassmap/internal/models/db_models"
	"grassmap/internal/repositories"
	"grassmap/pkg/utils"
)

// Known event names. Clients may send others; they are stored as-is.
const (
	EventVisitHome     = "visit_home"
	EventGeneratePlan  = "generate_plan"
	EventCheckIn       = "check_in"
	EventChat          = "chat"
	EventFetchReview   = "fetch_review"
	EventWeatherPopup  = "weather_popup"
	EventFeedback      = "feedback"
	EventTripCompleted = "trip_completed"
	EventError         = "error"
)

type AnalyticsEventInput struct {
	Name       string
	SessionID  string
	Properties map[string]interface{}
	ClientIP   string
	UserAgent  string
}

type AnalyticsServiceInterface interface {
	LogEvent(ctx context.Context, in AnalyticsEventInput) error
	Summary(ctx context.Context, window time.Duration) ([]repositories.EventCount, error)
}

type AnalyticsService struct {
	repo    repositories.EventRepository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewAnalyticsService(repo repositories.EventRepository, m *metrics.Metrics, logger *zap.Logger) AnalyticsServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &AnalyticsService{repo: repo, metrics: m, logger: logger}
}

func (s *AnalyticsService) LogEvent(ctx context.Context, in AnalyticsEventInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: event name is required", utils.ErrInvalidRequest)
	}
	props := "{}"
	if len(in.Properties) > 0 {
		raw, err := json.Marshal(in.Properties)
		if err != nil {
			return fmt.Errorf("%w: properties: %v", utils.ErrInvalidRequest, err)
		}
		props = string(raw)
	}

	event := &dbm.AnalyticsEvent{
		Name:       in.Name,
		SessionID:  in.SessionID,
		Properties: props,
		ClientIP:   in.ClientIP,
		UserAgent:  in.UserAgent,
	}
	s.metrics.Events.WithLabelValues(in.Name).Inc()
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	s.logger.Debug("analytics event", zap.String("name", in.Name), zap.String("session_id", in.SessionID))
	return nil
}

func (s *AnalyticsService) Summary(ctx context.Context, window time.Duration) ([]repositories.EventCount, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	rows, err := s.repo.CountByName(ctx, time.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return rows, nil
}
