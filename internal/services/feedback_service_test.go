package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grassmap/internal/models/db_models"
	"grassmap/internal/repositories"
	"grassmap/pkg/utils"
)

type mockFeedbackRepo struct {
	mock.Mock
}

func (m *mockFeedbackRepo) CreateFeedback(ctx context.Context, feedback *db_models.Feedback) error {
	return m.Called(ctx, feedback).Error(0)
}

func (m *mockFeedbackRepo) ListFeedback(ctx context.Context, page, pageSize int) ([]db_models.Feedback, error) {
	args := m.Called(ctx, page, pageSize)
	items, _ := args.Get(0).([]db_models.Feedback)
	return items, args.Error(1)
}

func TestFeedbackService_AddFeedback(t *testing.T) {
	repo := new(mockFeedbackRepo)
	repo.On("CreateFeedback", mock.Anything, mock.MatchedBy(func(f *db_models.Feedback) bool {
		return f.Rating == 4 && f.Comment == "很好玩" && f.City == "东京"
	})).Return(nil).Once()

	fb, err := NewFeedbackService(repo, nil).AddFeedback(context.Background(), FeedbackInput{
		SessionID: "s1", City: "东京", Comment: "  很好玩 ", Rating: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", fb.SessionID)
	repo.AssertExpectations(t)
}

func TestFeedbackService_Validation(t *testing.T) {
	repo := new(mockFeedbackRepo)
	svc := NewFeedbackService(repo, nil)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.AddFeedback(context.Background(), FeedbackInput{Rating: rating})
		assert.ErrorIs(t, err, utils.ErrInvalidRating)
	}
	_, err := svc.GetFeedback(context.Background(), 0, 10)
	assert.ErrorIs(t, err, utils.ErrInvalidPage)
	_, err = svc.GetFeedback(context.Background(), 1, 101)
	assert.ErrorIs(t, err, utils.ErrInvalidPageSize)

	repo.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
}

func TestFeedbackService_RepositoryErrors(t *testing.T) {
	repo := new(mockFeedbackRepo)
	repo.On("CreateFeedback", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	repo.On("ListFeedback", mock.Anything, 1, 10).Return(nil, errors.New("connection refused"))
	svc := NewFeedbackService(repo, nil)

	_, err := svc.AddFeedback(context.Background(), FeedbackInput{Rating: 5})
	assert.ErrorIs(t, err, utils.ErrDatabaseError)
	_, err = svc.GetFeedback(context.Background(), 1, 10)
	assert.ErrorIs(t, err, utils.ErrDatabaseError)
}

func TestAnalyticsService_LogAndSummarize(t *testing.T) {
	svc := NewAnalyticsService(repositories.NewMemoryEventRepository(), nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.LogEvent(ctx, AnalyticsEventInput{Name: EventChat, SessionID: "s1"}))
	require.NoError(t, svc.LogEvent(ctx, AnalyticsEventInput{Name: EventChat, Properties: map[string]interface{}{"ok": true}}))
	require.NoError(t, svc.LogEvent(ctx, AnalyticsEventInput{Name: EventCheckIn}))

	err := svc.LogEvent(ctx, AnalyticsEventInput{})
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	rows, err := svc.Summary(ctx, time.Hour)
	require.NoError(t, err)
	totals := map[string]int64{}
	for _, r := range rows {
		totals[r.Name] = r.Total
	}
	assert.Equal(t, map[string]int64{EventChat: 2, EventCheckIn: 1}, totals)
}
