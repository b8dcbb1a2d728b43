package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/draftwise/draftwise/adapter/api"
	"github.com/draftwise/draftwise/internal/app"
	"github.com/draftwise/draftwise/pkg/config"
	"github.com/draftwise/draftwise/pkg/observability"
)

func main() {
	logger := observability.NewLogger(observability.ProductionLogConfig())

	logger.Info("starting draftwise API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.IsDevelopment() {
		logCfg := observability.DefaultLogConfig()
		logCfg.Level = observability.LogLevelDebug
		logger = observability.NewLogger(logCfg)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()
	logger.Info("connected to database", "driver", container.DBDriver)

	if cfg.OutboxProcessorEnabled {
		container.OutboxProcessor.Start(ctx)
	}

	billing := api.NewBillingHandler(api.BillingHandlerConfig{
		GetSubscription:       container.GetSubscriptionHandler,
		PreviewChange:         container.PreviewChangeHandler,
		ChangePlan:            container.ChangePlanHandler,
		CancelSubscription:    container.CancelSubscriptionHandler,
		Resubscribe:           container.ResubscribeHandler,
		CancelScheduledChange: container.CancelScheduledChangeHandler,
		Logger:                logger,
	})

	var webhook *api.WebhookHandler
	if cfg.StripeWebhookSecret != "" {
		webhook = api.NewWebhookHandler(cfg.StripeWebhookSecret, container.SyncPeriodEndHandler, logger)
	} else {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhook endpoint disabled")
	}

	serverCfg := api.DefaultServerConfig()
	serverCfg.Addr = cfg.APIAddr
	server := api.NewServer(serverCfg, billing, webhook, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("API server shutdown error", "error", err)
		}
	}

	logger.Info("API stopped")
}
