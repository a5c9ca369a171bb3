package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats outbox.Stats

func (s fixedStats) GetStats() outbox.Stats { return outbox.Stats(s) }

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) error {
	return errors.New("connection refused")
}

func (failingPublisher) Close() error { return nil }

func serve(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthMux(t *testing.T) {
	metrics := observability.NewPrometheusMetrics()
	metrics.Counter(observability.MetricEventsPublished, 3)
	registry := observability.NewHealthRegistry(0)
	registry.Register("database", func(context.Context) observability.HealthCheckResult {
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
	})
	mux := newHealthMux(fixedStats{IsRunning: true, PublishedCount: 3}, registry, metrics)

	rec, body := serve(t, mux, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(3), body["published"])

	rec, body = serve(t, mux, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, _ = serve(t, mux, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sitework_events_published_total 3")
}

func TestHealthMux_NotReady(t *testing.T) {
	registry := observability.NewHealthRegistry(0)
	registry.Register("database", func(context.Context) observability.HealthCheckResult {
		return observability.HealthCheckResult{Status: observability.HealthStatusUnhealthy, Message: "closed"}
	})
	mux := newHealthMux(fixedStats{}, registry, observability.NewPrometheusMetrics())

	rec, body := serve(t, mux, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])

	_, body = serve(t, mux, "/healthz")
	assert.Equal(t, "stopped", body["status"])
}

func TestBreakerChecker(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := eventbus.DefaultBreakerConfig()
	cfg.FailureThreshold = 2
	breaker := eventbus.NewBreakerPublisher(failingPublisher{}, cfg, logger)
	check := breakerChecker(breaker)

	assert.Equal(t, observability.HealthStatusHealthy, check(context.Background()).Status)

	for range 2 {
		_ = breaker.Publish(context.Background(), "construction.substage.started", nil)
	}
	result := check(context.Background())
	assert.Equal(t, observability.HealthStatusDegraded, result.Status)
	assert.Equal(t, "circuit open", result.Message)
}
