package chat_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/internal/metrics"
	"grassmap/internal/services"
	"grassmap/pkg/config"
	"grassmap/pkg/utils"
)

var Module = fx.Provide(
	provideChatClient,
	provideChatService)

// provideChatClient picks the provider from CHAT_PROVIDER. Without a key the
// client is nil and chat requests answer 503.
func provideChatClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (utils.ChatCompletionClient, error) {
	if cfg.ChatAPIKey() == "" {
		logger.Warn("no chat API key configured, chat is disabled", zap.String("provider", cfg.ChatProvider))
		return nil, nil
	}

	logger.Info("initializing chat client",
		zap.String("provider", cfg.ChatProvider),
		zap.String("model", cfg.ChatModel()))
	client, err := utils.NewChatClient(context.Background(), cfg.ChatProvider, cfg.ChatAPIKey(), cfg.ChatModel())
	if err != nil {
		return nil, err
	}
	if closer, ok := client.(interface{ Close() error }); ok {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error { return closer.Close() },
		})
	}
	return client, nil
}

func provideChatService(client utils.ChatCompletionClient, m *metrics.Metrics, logger *zap.Logger) services.ChatServiceInterface {
	return services.NewChatService(client, m, logger)
}
