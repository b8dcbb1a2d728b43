package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/draftwise/draftwise/internal/app"
	billingCommands "github.com/draftwise/draftwise/internal/billing/application/commands"
	"github.com/draftwise/draftwise/pkg/config"
	"github.com/draftwise/draftwise/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *app.Container) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "development",
		SQLitePath:        filepath.Join(t.TempDir(), "api.db"),
		ProrationRounding: "half-up",
		TrialDays:         14,

		OutboxPollInterval: 50 * time.Millisecond,
		OutboxBatchSize:    10,
		OutboxMaxRetries:   3,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := app.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	billing := NewBillingHandler(BillingHandlerConfig{
		GetSubscription:       container.GetSubscriptionHandler,
		PreviewChange:         container.PreviewChangeHandler,
		ChangePlan:            container.ChangePlanHandler,
		CancelSubscription:    container.CancelSubscriptionHandler,
		Resubscribe:           container.ResubscribeHandler,
		CancelScheduledChange: container.CancelScheduledChangeHandler,
		Logger:                logger,
	})

	server := NewServer(DefaultServerConfig(), billing, nil, logger)
	return server, container
}

func doRequest(t *testing.T, server *Server, method, path string, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetSubscription(t *testing.T) {
	server, container := newTestServer(t)
	userID := uuid.New()

	t.Run("requires user header", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/billing/subscription", uuid.Nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/billing/subscription", userID, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns the snapshot", func(t *testing.T) {
		_, err := container.EnsureSubscriptionHandler.Handle(context.Background(), billingCommands.EnsureSubscriptionCommand{UserID: userID})
		require.NoError(t, err)

		rec := doRequest(t, server, http.MethodGet, "/api/v1/billing/subscription", userID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, "free", snapshot["tier"])
		assert.Equal(t, "active", snapshot["status"])
	})
}

func TestChangePlan(t *testing.T) {
	server, container := newTestServer(t)
	userID := uuid.New()

	_, err := container.EnsureSubscriptionHandler.Handle(context.Background(), billingCommands.EnsureSubscriptionCommand{UserID: userID})
	require.NoError(t, err)

	t.Run("upgrade starts a trial", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/billing/change", userID,
			`{"tier": "professional", "interval": "monthly", "email": "api@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, true, result["trial_started"])
	})

	t.Run("same plan is rejected", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/billing/change", userID,
			`{"tier": "professional", "interval": "monthly"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid body is rejected", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/billing/change", userID, `{"tier": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPreviewChange(t *testing.T) {
	server, container := newTestServer(t)
	userID := uuid.New()

	_, err := container.EnsureSubscriptionHandler.Handle(context.Background(), billingCommands.EnsureSubscriptionCommand{UserID: userID})
	require.NoError(t, err)

	t.Run("requires tier", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/billing/preview", userID, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("quotes an upgrade", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodGet, "/api/v1/billing/preview?tier=professional", userID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "upgrade", result["kind"])
		assert.Equal(t, false, result["applies_at_period_end"])
	})
}

func TestCancelFlow(t *testing.T) {
	server, container := newTestServer(t)
	userID := uuid.New()

	_, err := container.EnsureSubscriptionHandler.Handle(context.Background(), billingCommands.EnsureSubscriptionCommand{UserID: userID})
	require.NoError(t, err)

	t.Run("free tier cannot cancel", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/billing/cancel", userID, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("paid tier cancels and resumes", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/billing/change", userID,
			`{"tier": "premium", "interval": "monthly", "email": "api@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, server, http.MethodPost, "/api/v1/billing/cancel", userID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var snapshot map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, true, snapshot["cancel_at_period_end"])

		rec = doRequest(t, server, http.MethodPost, "/api/v1/billing/resume", userID, "")
		require.Equal(t, http.StatusOK, rec.Code)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		assert.Equal(t, false, snapshot["cancel_at_period_end"])
	})
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/health", uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestRequestMetrics(t *testing.T) {
	server, _ := newTestServer(t)
	metrics := observability.NewInMemoryMetrics()
	server.SetMetrics(metrics)

	rec := doRequest(t, server, http.MethodGet, "/health", uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	count := metrics.GetCounter("http.requests",
		observability.T("method", "GET"),
		observability.T("path", "/health"),
		observability.T("status", "200"),
	)
	assert.Equal(t, int64(1), count)

	timings := metrics.GetTimings("http.request_duration",
		observability.T("method", "GET"),
		observability.T("path", "/health"),
		observability.T("status", "200"),
	)
	assert.Len(t, timings, 1)
}
