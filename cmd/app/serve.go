package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"grassmap/cmd/fx/analytics_fx"
	"grassmap/cmd/fx/chat_fx"
	"grassmap/cmd/fx/controllers_fx"
	"grassmap/cmd/fx/db_fx"
	"grassmap/cmd/fx/distance_matrix_fx"
	"grassmap/cmd/fx/feedback_fx"
	"grassmap/cmd/fx/geocode_fx"
	"grassmap/cmd/fx/location_fx"
	"grassmap/cmd/fx/logger_fx"
	"grassmap/cmd/fx/lookup_fx"
	"grassmap/cmd/fx/memcache_fx"
	"grassmap/cmd/fx/metrics_fx"
	"grassmap/cmd/fx/session_fx"
	"grassmap/cmd/fx/share_fx"
	"grassmap/pkg/config"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				fx.Supply(opts.cfg),
				fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: logger.Named("fx")}
				}),
				logger_fx.Module,
				metrics_fx.Module,
				db_fx.Module,
				memcache_fx.Module,
				analytics_fx.Module,
				feedback_fx.Module,
				chat_fx.Module,
				geocode_fx.Module,
				location_fx.Module,
				lookup_fx.Module,
				distance_matrix_fx.Module,
				share_fx.Module,
				session_fx.Module,
				controllers_fx.Module,

				fx.Provide(ProvideRouter),
				fx.Invoke(StartServer),
			)
			app.Run()
			return app.Err()
		},
	}
}

func StartServer(lc fx.Lifecycle, cfg *config.Config, handler http.Handler, logger *zap.Logger) {
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", server.Addr)
			if err != nil {
				return err
			}
			logger.Info("starting HTTP server", zap.String("addr", server.Addr))
			go func() {
				if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
