package cli

import (
	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	billingQueries "github.com/draftwise/draftwise/internal/billing/application/queries"
	clientCommands "github.com/draftwise/draftwise/internal/clients/application/commands"
	clientQueries "github.com/draftwise/draftwise/internal/clients/application/queries"
	draftCommands "github.com/draftwise/draftwise/internal/drafting/application/commands"
	draftQueries "github.com/draftwise/draftwise/internal/drafting/application/queries"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	// Billing command handlers
	EnsureSubscriptionHandler    *billingCommands.EnsureSubscriptionHandler
	ChangePlanHandler            *billingCommands.ChangePlanHandler
	CancelSubscriptionHandler    *billingCommands.CancelSubscriptionHandler
	CancelScheduledChangeHandler *billingCommands.CancelScheduledChangeHandler
	ResubscribeHandler           *billingCommands.ResubscribeHandler

	// Billing query handlers
	GetSubscriptionHandler *billingQueries.GetSubscriptionHandler
	PreviewChangeHandler   *billingQueries.PreviewChangeHandler

	// Client command handlers
	CreateClientHandler  *clientCommands.CreateClientHandler
	UpdateClientHandler  *clientCommands.UpdateClientHandler
	ArchiveClientHandler *clientCommands.ArchiveClientHandler

	// Client query handlers
	ListClientsHandler *clientQueries.ListClientsHandler
	GetClientHandler   *clientQueries.GetClientHandler

	// Drafting handlers
	GenerateDraftHandler *draftCommands.GenerateDraftHandler
	ListDraftsHandler    *draftQueries.ListDraftsHandler
	GetDraftHandler      *draftQueries.GetDraftHandler

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	ensureSubscriptionHandler *billingCommands.EnsureSubscriptionHandler,
	changePlanHandler *billingCommands.ChangePlanHandler,
	cancelSubscriptionHandler *billingCommands.CancelSubscriptionHandler,
	cancelScheduledChangeHandler *billingCommands.CancelScheduledChangeHandler,
	resubscribeHandler *billingCommands.ResubscribeHandler,
	getSubscriptionHandler *billingQueries.GetSubscriptionHandler,
	previewChangeHandler *billingQueries.PreviewChangeHandler,
	createClientHandler *clientCommands.CreateClientHandler,
	updateClientHandler *clientCommands.UpdateClientHandler,
	archiveClientHandler *clientCommands.ArchiveClientHandler,
	listClientsHandler *clientQueries.ListClientsHandler,
	getClientHandler *clientQueries.GetClientHandler,
	generateDraftHandler *draftCommands.GenerateDraftHandler,
	listDraftsHandler *draftQueries.ListDraftsHandler,
	getDraftHandler *draftQueries.GetDraftHandler,
) *App {
	return &App{
		EnsureSubscriptionHandler:    ensureSubscriptionHandler,
		ChangePlanHandler:            changePlanHandler,
		CancelSubscriptionHandler:    cancelSubscriptionHandler,
		CancelScheduledChangeHandler: cancelScheduledChangeHandler,
		ResubscribeHandler:           resubscribeHandler,
		GetSubscriptionHandler:       getSubscriptionHandler,
		PreviewChangeHandler:         previewChangeHandler,
		CreateClientHandler:          createClientHandler,
		UpdateClientHandler:          updateClientHandler,
		ArchiveClientHandler:         archiveClientHandler,
		ListClientsHandler:           listClientsHandler,
		GetClientHandler:             getClientHandler,
		GenerateDraftHandler:         generateDraftHandler,
		ListDraftsHandler:            listDraftsHandler,
		GetDraftHandler:              getDraftHandler,
		CurrentUserID:                uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
