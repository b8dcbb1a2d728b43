package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	billingQueries "github.com/draftwise/draftwise/internal/billing/application/queries"
	"github.com/draftwise/draftwise/internal/billing/domain"
	"github.com/google/uuid"
)

// BillingHandler handles billing API requests.
type BillingHandler struct {
	getSubscription       *billingQueries.GetSubscriptionHandler
	previewChange         *billingQueries.PreviewChangeHandler
	changePlan            *billingCommands.ChangePlanHandler
	cancelSubscription    *billingCommands.CancelSubscriptionHandler
	resubscribe           *billingCommands.ResubscribeHandler
	cancelScheduledChange *billingCommands.CancelScheduledChangeHandler
	logger                *slog.Logger
}

// BillingHandlerConfig holds dependencies for the billing handler.
type BillingHandlerConfig struct {
	GetSubscription       *billingQueries.GetSubscriptionHandler
	PreviewChange         *billingQueries.PreviewChangeHandler
	ChangePlan            *billingCommands.ChangePlanHandler
	CancelSubscription    *billingCommands.CancelSubscriptionHandler
	Resubscribe           *billingCommands.ResubscribeHandler
	CancelScheduledChange *billingCommands.CancelScheduledChangeHandler
	Logger                *slog.Logger
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(cfg BillingHandlerConfig) *BillingHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &BillingHandler{
		getSubscription:       cfg.GetSubscription,
		previewChange:         cfg.PreviewChange,
		changePlan:            cfg.ChangePlan,
		cancelSubscription:    cfg.CancelSubscription,
		resubscribe:           cfg.Resubscribe,
		cancelScheduledChange: cfg.CancelScheduledChange,
		logger:                cfg.Logger,
	}
}

// userID extracts the authenticated user from the request. Authentication
// happens upstream; this trusts the header the gateway injects.
func userID(r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetSubscription handles GET /api/v1/billing/subscription
func (h *BillingHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	snapshot, err := h.getSubscription.Handle(r.Context(), billingQueries.GetSubscriptionQuery{UserID: uid})
	if err != nil {
		h.writeBillingError(w, err, "failed to load subscription")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// PreviewChange handles GET /api/v1/billing/preview
func (h *BillingHandler) PreviewChange(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	tier := r.URL.Query().Get("tier")
	if tier == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'tier' is required")
		return
	}
	interval := r.URL.Query().Get("interval")
	if interval == "" {
		interval = string(domain.IntervalMonthly)
	}

	result, err := h.previewChange.Handle(r.Context(), billingQueries.PreviewChangeQuery{
		UserID:         uid,
		TargetTier:     domain.Tier(tier),
		TargetInterval: domain.Interval(interval),
	})
	if err != nil {
		h.writeBillingError(w, err, "failed to preview change")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":                  result.Kind.String(),
		"amount_due_now_cents":  result.Quote.AmountDueNowCents,
		"applies_at_period_end": result.Quote.AppliesAtPeriodEnd,
		"period_end":            result.Quote.PeriodEnd,
		"note":                  result.Quote.Note,
	})
}

type changePlanRequest struct {
	RequestID uuid.UUID `json:"request_id"`
	Tier      string    `json:"tier"`
	Interval  string    `json:"interval"`
	Email     string    `json:"email"`
}

// ChangePlan handles POST /api/v1/billing/change
func (h *BillingHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	var req changePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Interval == "" {
		req.Interval = string(domain.IntervalMonthly)
	}

	result, err := h.changePlan.Handle(r.Context(), billingCommands.ChangePlanCommand{
		RequestID:      req.RequestID,
		UserID:         uid,
		Email:          req.Email,
		TargetTier:     domain.Tier(req.Tier),
		TargetInterval: domain.Interval(req.Interval),
	})
	if err != nil {
		h.writeBillingError(w, err, "failed to change plan")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kind":          result.Kind.String(),
		"subscription":  result.Subscription,
		"quote":         result.Quote,
		"trial_started": result.TrialStarted,
		"scheduled":     result.Scheduled,
	})
}

// Cancel handles POST /api/v1/billing/cancel
func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	snapshot, err := h.cancelSubscription.Handle(r.Context(), billingCommands.CancelSubscriptionCommand{UserID: uid})
	if err != nil {
		h.writeBillingError(w, err, "failed to cancel subscription")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// Resume handles POST /api/v1/billing/resume
func (h *BillingHandler) Resume(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	snapshot, err := h.resubscribe.Handle(r.Context(), billingCommands.ResubscribeCommand{UserID: uid})
	if err != nil {
		h.writeBillingError(w, err, "failed to resume subscription")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// CancelScheduledChange handles POST /api/v1/billing/scheduled-change/cancel
func (h *BillingHandler) CancelScheduledChange(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	snapshot, err := h.cancelScheduledChange.Handle(r.Context(), billingCommands.CancelScheduledChangeCommand{UserID: uid})
	if err != nil {
		h.writeBillingError(w, err, "failed to cancel scheduled change")
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// writeBillingError maps domain errors onto HTTP status codes.
func (h *BillingHandler) writeBillingError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		writeError(w, http.StatusNotFound, "Subscription not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Requested change is not valid from the current subscription state")
	case errors.Is(err, domain.ErrNoOpChange):
		writeError(w, http.StatusConflict, "Requested plan matches the current plan")
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeError(w, http.StatusPaymentRequired, "Monthly draft quota exceeded")
	case errors.Is(err, domain.ErrPaymentFailed):
		writeError(w, http.StatusPaymentRequired, "Payment was declined")
	case errors.Is(err, domain.ErrGatewayUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Payment gateway is unavailable, retry shortly")
	case errors.Is(err, domain.ErrStaleState):
		writeError(w, http.StatusConflict, "Subscription was modified concurrently, re-fetch and retry")
	default:
		h.logger.Error(logMsg, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
