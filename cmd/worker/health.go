package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/sitework/pkg/observability"
)

type statsSource interface {
	GetStats() outbox.Stats
}

// newHealthMux serves processor stats on /healthz, dependency probes on
// /readyz and Prometheus metrics on /metrics.
func newHealthMux(processor statsSource, registry *observability.HealthRegistry, metrics *observability.PrometheusMetrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := processor.GetStats()
		status := "ok"
		if !stats.IsRunning {
			status = "stopped"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":            status,
			"running":           stats.IsRunning,
			"published":         stats.PublishedCount,
			"failed":            stats.FailedCount,
			"dead":              stats.DeadCount,
			"lag_seconds":       stats.LagSeconds,
			"last_processed_at": stats.LastProcessedAt,
			"last_error_at":     stats.LastErrorAt,
			"last_error":        stats.LastError,
		})
	})
	mux.Handle("/readyz", registry.ReadinessHandler())
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// breakerChecker reports the broker degraded while its circuit is open.
func breakerChecker(p *eventbus.BreakerPublisher) observability.HealthChecker {
	return func(ctx context.Context) observability.HealthCheckResult {
		state := p.State()
		status := observability.HealthStatusHealthy
		if state == "open" {
			status = observability.HealthStatusDegraded
		}
		return observability.HealthCheckResult{Status: status, Message: "circuit " + state}
	}
}
