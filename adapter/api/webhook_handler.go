package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// maxWebhookBody bounds the webhook payload size per Stripe's guidance.
const maxWebhookBody = 65536

// WebhookHandler verifies and dispatches Stripe webhook events.
type WebhookHandler struct {
	secret        string
	syncPeriodEnd *billingCommands.SyncPeriodEndHandler
	logger        *slog.Logger
}

// NewWebhookHandler creates a new Stripe webhook handler.
func NewWebhookHandler(secret string, syncPeriodEnd *billingCommands.SyncPeriodEndHandler, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		secret:        secret,
		syncPeriodEnd: syncPeriodEnd,
		logger:        logger,
	}
}

// HandleStripe handles POST /webhooks/stripe
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		h.logger.Warn("webhook signature verification failed", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid signature")
		return
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionUpdated:
		if err := h.handleSubscriptionUpdated(r, event); err != nil {
			h.logger.Error("failed to apply subscription update", "event_id", event.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to process event")
			return
		}
	case stripe.EventTypeInvoicePaymentFailed:
		h.logger.Warn("invoice payment failed", "event_id", event.ID)
	default:
		h.logger.Debug("ignoring webhook event", "type", event.Type, "event_id", event.ID)
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}

func (h *WebhookHandler) handleSubscriptionUpdated(r *http.Request, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return err
	}

	periodEnd := subscriptionPeriodEnd(&sub)
	if periodEnd.IsZero() {
		h.logger.Debug("subscription update carries no period end", "subscription", sub.ID)
		return nil
	}

	return h.syncPeriodEnd.Handle(r.Context(), billingCommands.SyncPeriodEndCommand{
		SubscriptionRef: sub.ID,
		PeriodEnd:       periodEnd,
		Observed:        time.Now().UTC(),
	})
}

// subscriptionPeriodEnd reads the billing period off the subscription item,
// where current API versions carry it.
func subscriptionPeriodEnd(sub *stripe.Subscription) time.Time {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}
	}
	end := sub.Items.Data[0].CurrentPeriodEnd
	if end == 0 {
		return time.Time{}
	}
	return time.Unix(end, 0).UTC()
}
