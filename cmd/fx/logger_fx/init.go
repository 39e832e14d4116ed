package logger_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"grassmap/pkg/config"
	"grassmap/pkg/logger"
)

var Module = fx.Provide(provideLogger)

func provideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.New(cfg.LogLevel, zap.String("service", "grassmap"))
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = l.Sync()
			return nil
		},
	})
	return l, nil
}
