// The api binary serves the HTTP REST API.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rise-and-shine/order-inventory-platform/api"
	"github.com/rise-and-shine/order-inventory-platform/app"
	"github.com/rise-and-shine/order-inventory-platform/logger"
	"github.com/rise-and-shine/order-inventory-platform/server"
	"github.com/rise-and-shine/order-inventory-platform/server/middleware"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := app.MustLoadConfig()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatalx(err)
	}
	defer a.Close()

	srv := server.NewHTTPServer(
		cfg.Server,
		middleware.NewRecoveryMW(logger.Named("http")),
		middleware.NewTracingMW(),
		middleware.NewTimeoutMW(cfg.Server.HandleTimeout),
		middleware.NewMetaInjectMW(cfg.ServiceName, cfg.ServiceVersion),
		middleware.NewLoggerMW(logger.Named("http")),
		middleware.NewErrorHandlerMW(cfg.Server.HideErrorDetails),
	)
	api.RegisterRoutes(srv.App(), a.UserService, a.OrderService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err = <-errCh:
		logger.Fatalx(err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorx(err)
	}
	logger.Info("http server stopped")
}
