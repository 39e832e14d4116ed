package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"grassmap/internal/itinerary"
	"grassmap/internal/metrics"
	"grassmap/internal/models/domain_models"
	"grassmap/pkg/utils"
)

// ChatTurn is the outcome of one user message.
type ChatTurn struct {
	UserMessage  domain_models.Message     `json:"userMessage"`
	Reply        *domain_models.Message    `json:"reply,omitempty"`
	Plan         *domain_models.TravelPlan `json:"plan,omitempty"`
	PlanReplaced bool                      `json:"planReplaced"`
}

type ChatServiceInterface interface {
	// Chat runs one turn against store. On transport failure the inline error
	// reply is still appended and the returned turn carries it.
	Chat(ctx context.Context, store *itinerary.Store, input string) (*ChatTurn, error)
}

type ChatService struct {
	client  utils.ChatCompletionClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewChatService(client utils.ChatCompletionClient, m *metrics.Metrics, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &ChatService{client: client, metrics: m, logger: logger}
}

func (s *ChatService) Chat(ctx context.Context, store *itinerary.Store, input string) (*ChatTurn, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: message is empty", utils.ErrInvalidRequest)
	}
	if s.client == nil {
		return nil, fmt.Errorf("chat: %w", utils.ErrNotConfigured)
	}
	provider := s.client.Provider()

	gen, ok := store.BeginLoadingRequest(itinerary.RequestChat)
	if !ok {
		s.metrics.ChatRequests.WithLabelValues(provider, "busy").Inc()
		return nil, utils.ErrChatBusy
	}

	turn := &ChatTurn{UserMessage: store.AddMessage(domain_models.RoleUser, input)}
	before := store.State()

	reply, err := s.client.Complete(ctx, buildConversation(before.ChatHistory, input))

	content := reply
	if err != nil {
		content = chatNetworkErrorReply
	} else if strings.TrimSpace(reply) == "" {
		content = chatEmptyReply
	}
	msg, ok := store.AddReply(itinerary.RequestChat, gen, content)
	if !ok {
		s.metrics.ChatRequests.WithLabelValues(provider, "stale").Inc()
		s.logger.Info("discarding superseded chat reply", zap.Uint64("generation", gen))
		return nil, utils.ErrStaleResponse
	}
	turn.Reply = &msg

	if err != nil {
		s.metrics.ChatRequests.WithLabelValues(provider, "error").Inc()
		s.logger.Warn("chat completion failed", zap.String("provider", provider), zap.Error(err))
		return turn, fmt.Errorf("%w: %v", utils.ErrChatUnavailable, err)
	}

	after := store.State()
	turn.Plan = after.CurrentPlan
	turn.PlanReplaced = after.CurrentPlan != nil && after.CurrentPlan != before.CurrentPlan
	s.metrics.ChatRequests.WithLabelValues(provider, "ok").Inc()
	s.logger.Info("chat turn completed",
		zap.String("provider", provider),
		zap.Bool("plan_replaced", turn.PlanReplaced))
	return turn, nil
}

// buildConversation prepends the system prompt to the chat log.
func buildConversation(history []domain_models.Message, lastInput string) []utils.ChatMessage {
	out := make([]utils.ChatMessage, 0, len(history)+1)
	out = append(out, utils.ChatMessage{Role: utils.ChatRoleSystem, Content: SystemPrompt(lastInput)})
	for _, m := range history {
		role := utils.ChatRoleUser
		if m.Role == domain_models.RoleAssistant {
			role = utils.ChatRoleAssistant
		}
		out = append(out, utils.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}

// IsChatFailure reports whether err left an inline error reply in the log.
func IsChatFailure(err error) bool {
	return errors.Is(err, utils.ErrChatUnavailable)
}
