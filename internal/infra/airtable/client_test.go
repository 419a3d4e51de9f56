package airtable_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dmelton/splitbook/internal/domain"
	"github.com/dmelton/splitbook/internal/infra/airtable"
	"github.com/dmelton/splitbook/internal/infra/observability"
	"github.com/dmelton/splitbook/internal/infra/resilience"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*airtable.Client, *observability.Metrics) {
	t.Helper()

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker("client-test")
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond}

	client := airtable.NewClient(&http.Client{Timeout: time.Second}, server.URL, "test-key", cb, cfg, metrics, zap.NewNop())
	return client, metrics
}

func TestClient_StoreFailureCountsError(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INTERNAL"}`, http.StatusInternalServerError)
	})

	_, err := client.ListAccounts(context.Background(), "u1")

	var unavailable *domain.ErrRepositoryUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
	}
	if got := metrics.StoreErrorCount("Accounts"); got != 1 {
		t.Errorf("expected 1 store error for Accounts, got %v", got)
	}
}

func TestClient_DeadlineSurfacesAsTimeout(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"records":[]}`))
	})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := client.ListAccounts(ctx, "u1")

	var timeout *domain.ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestClient_NotFoundIsNotAStoreError(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"NOT_FOUND"}`, http.StatusNotFound)
	})

	_, err := client.GetAccount(context.Background(), "u1", "recMissing")

	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := metrics.StoreErrorCount("Accounts"); got != 0 {
		t.Errorf("expected 0 store errors for a 404, got %v", got)
	}
}
