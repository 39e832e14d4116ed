package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grassmap/internal/itinerary"
	"grassmap/internal/models/domain_models"
	"grassmap/pkg/utils"
)

const planReply = `为你安排 "东京一日游"：
[{"name":"A","type":"cafe","address":"a"},{"name":"B","type":"sight","address":"b"},{"name":"C","address":"c"}]`

type mockChatClient struct {
	mock.Mock
}

func (m *mockChatClient) Complete(ctx context.Context, messages []utils.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *mockChatClient) Provider() string { return "mock" }

func TestChatService_ReplyWithPlan(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []utils.ChatMessage) bool {
		return len(msgs) == 2 &&
			msgs[0].Role == utils.ChatRoleSystem &&
			msgs[1].Role == utils.ChatRoleUser &&
			msgs[1].Content == "东京一日游"
	})).Return(planReply, nil).Once()

	store := itinerary.NewStore(nil, nil)
	turn, err := NewChatService(client, nil, nil).Chat(context.Background(), store, "  东京一日游 ")
	require.NoError(t, err)

	assert.Equal(t, "东京一日游", turn.UserMessage.Content)
	require.NotNil(t, turn.Reply)
	assert.Equal(t, planReply, turn.Reply.Content)
	assert.True(t, turn.PlanReplaced)
	require.NotNil(t, turn.Plan)
	assert.Len(t, turn.Plan.GrassPoints, 3)

	state := store.State()
	assert.False(t, state.Loading)
	assert.Len(t, state.ChatHistory, 2)
	client.AssertExpectations(t)
}

func TestChatService_SystemPromptEmbedsInput(t *testing.T) {
	msgs := buildConversation([]domain_models.Message{
		{Role: domain_models.RoleUser, Content: "hi"},
		{Role: domain_models.RoleAssistant, Content: "hello"},
	}, "去巴黎")

	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0].Content, "用户输入如下：\n去巴黎")
	assert.Equal(t, utils.ChatRoleAssistant, msgs[2].Role)
}

func TestChatService_TransportErrorAddsInlineReply(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("connection reset")).Once()

	store := itinerary.NewStore(nil, nil)
	turn, err := NewChatService(client, nil, nil).Chat(context.Background(), store, "hello")

	require.ErrorIs(t, err, utils.ErrChatUnavailable)
	assert.True(t, IsChatFailure(err))
	require.NotNil(t, turn)
	assert.Equal(t, chatNetworkErrorReply, turn.Reply.Content)

	state := store.State()
	assert.False(t, state.Loading)
	assert.Nil(t, state.CurrentPlan)
	require.Len(t, state.ChatHistory, 2)
	assert.Equal(t, domain_models.RoleAssistant, state.ChatHistory[1].Role)
}

func TestChatService_EmptyReply(t *testing.T) {
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything).Return("   ", nil).Once()

	turn, err := NewChatService(client, nil, nil).Chat(context.Background(), itinerary.NewStore(nil, nil), "hello")
	require.NoError(t, err)
	assert.Equal(t, chatEmptyReply, turn.Reply.Content)
	assert.False(t, turn.PlanReplaced)
}

func TestChatService_Validation(t *testing.T) {
	_, err := NewChatService(new(mockChatClient), nil, nil).Chat(context.Background(), itinerary.NewStore(nil, nil), "   ")
	assert.ErrorIs(t, err, utils.ErrInvalidRequest)

	_, err = NewChatService(nil, nil, nil).Chat(context.Background(), itinerary.NewStore(nil, nil), "hello")
	assert.ErrorIs(t, err, utils.ErrNotConfigured)
}

func TestChatService_BusyWhileLoading(t *testing.T) {
	store := itinerary.NewStore(nil, nil)
	store.SetLoading(true)

	client := new(mockChatClient)
	_, err := NewChatService(client, nil, nil).Chat(context.Background(), store, "hello")
	assert.ErrorIs(t, err, utils.ErrChatBusy)
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestChatService_CancelledReplyIsDiscarded(t *testing.T) {
	store := itinerary.NewStore(nil, nil)
	client := new(mockChatClient)
	client.On("Complete", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { store.CancelRequests(itinerary.RequestChat) }).
		Return(planReply, nil).Once()

	_, err := NewChatService(client, nil, nil).Chat(context.Background(), store, "hello")
	require.ErrorIs(t, err, utils.ErrStaleResponse)

	state := store.State()
	assert.Nil(t, state.CurrentPlan)
	assert.False(t, state.Loading)
	assert.Len(t, state.ChatHistory, 1, "only the user message is kept")
}
