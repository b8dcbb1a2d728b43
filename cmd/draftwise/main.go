package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/draftwise/draftwise/adapter/cli"
	cliBilling "github.com/draftwise/draftwise/adapter/cli/billing"
	cliClients "github.com/draftwise/draftwise/adapter/cli/clients"
	cliDraft "github.com/draftwise/draftwise/adapter/cli/draft"
	"github.com/draftwise/draftwise/internal/app"
	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	"github.com/draftwise/draftwise/pkg/config"
	"github.com/draftwise/draftwise/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	logger := observability.NewLogger(observability.DefaultLogConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	if cfg.IsDevelopment() {
		logCfg := observability.DefaultLogConfig()
		logCfg.Level = observability.LogLevelDebug
		logger = observability.NewLogger(logCfg)
	}
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		cliApp = cli.NewApp(
			container.EnsureSubscriptionHandler,
			container.ChangePlanHandler,
			container.CancelSubscriptionHandler,
			container.CancelScheduledChangeHandler,
			container.ResubscribeHandler,
			container.GetSubscriptionHandler,
			container.PreviewChangeHandler,
			container.CreateClientHandler,
			container.UpdateClientHandler,
			container.ArchiveClientHandler,
			container.ListClientsHandler,
			container.GetClientHandler,
			container.GenerateDraftHandler,
			container.ListDraftsHandler,
			container.GetDraftHandler,
		)

		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid DRAFTWISE_USER_ID", "error", err)
			os.Exit(1)
		}
		cliApp.SetCurrentUserID(userID)

		// Every user has a subscription row; first run creates the free one.
		if _, err := container.EnsureSubscriptionHandler.Handle(ctx, billingCommands.EnsureSubscriptionCommand{UserID: userID}); err != nil {
			logger.Warn("failed to ensure subscription", "error", err)
		}
	}

	cli.SetApp(cliApp)

	cli.AddCommand(cliBilling.Cmd)
	cli.AddCommand(cliClients.Cmd)
	cli.AddCommand(cliDraft.Cmd)

	cli.Execute()
}
