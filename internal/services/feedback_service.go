package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"grassmap/internal/models/db_models"
	"grassmap/internal/repositories"
	"grassmap/pkg/utils"
)

type FeedbackInput struct {
	SessionID string
	PlanID    string
	City      string
	Comment   string
	Rating    int
}

type FeedbackServiceInterface interface {
	AddFeedback(ctx context.Context, in FeedbackInput) (*db_models.Feedback, error)
	GetFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error)
}

type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepositoryInterface
	logger       *zap.Logger
}

func NewFeedbackService(feedbackRepo repositories.FeedbackRepositoryInterface, logger *zap.Logger) FeedbackServiceInterface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{feedbackRepo: feedbackRepo, logger: logger}
}

func (s *FeedbackService) AddFeedback(ctx context.Context, in FeedbackInput) (*db_models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, utils.ErrInvalidRating
	}

	feedback := &db_models.Feedback{
		SessionID: in.SessionID,
		PlanID:    in.PlanID,
		City:      in.City,
		Comment:   strings.TrimSpace(in.Comment),
		Rating:    in.Rating,
	}
	if err := s.feedbackRepo.CreateFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	s.logger.Info("feedback received",
		zap.String("session_id", in.SessionID),
		zap.Int("rating", in.Rating))
	return feedback, nil
}

func (s *FeedbackService) GetFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error) {
	if page < 1 {
		return nil, utils.ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, utils.ErrInvalidPageSize
	}
	items, err := s.feedbackRepo.ListFeedback(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return items, nil
}
