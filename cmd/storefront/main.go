package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/storefront/api/handler"
	"github.com/fastygo/storefront/internal/config"
	"github.com/fastygo/storefront/internal/middleware"
	"github.com/fastygo/storefront/internal/router"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/internal/storefront"
	"github.com/fastygo/storefront/pkg/httpcontext"
	"github.com/fastygo/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Name:     cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	container, err := storefront.Build(appCtx, cfg, manager, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to build storefront", zap.Error(err))
	}
	if err := container.Start(appCtx); err != nil {
		_ = manager.Shutdown(context.Background())
		zapLogger.Fatal("failed to start storefront", zap.Error(err))
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Session: apiHandler.NewSessionHandler(container.Auth, container.Flows, ctxAdapter, zapLogger),
		OTP:     apiHandler.NewOTPHandler(container.Flows, ctxAdapter, zapLogger),
		Cart:    apiHandler.NewCartHandler(container.Cart, container.Catalog, ctxAdapter, zapLogger),
		Catalog: apiHandler.NewCatalogHandler(container.Catalog, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(container.Monitor, ctxAdapter, zapLogger),
	}
	if cfg.HTTP.EnableMetrics {
		handlers.Metrics = container.Metrics.Handler()
	}
	r := router.New(handlers)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.RequestID(),
			middleware.AccessLog(zapLogger.Named("http"), container.Metrics),
			middleware.Recover(zapLogger),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	manager.Go("http_server", func() error {
		zapLogger.Info("server started", zap.String("address", cfg.Address()), zap.String("env", cfg.Environment))
		return server.ListenAndServe(cfg.Address())
	})
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	if err := manager.Wait(appCtx); err != nil {
		zapLogger.Error("component failure, shutting down", zap.Error(err))
	}

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
