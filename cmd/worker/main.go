// Command sitework-worker relays construction events from the outbox to
// RabbitMQ and serves health and metrics endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/felixgeelhaar/sitework/pkg/observability"
	"golang.org/x/sync/errgroup"
)

const (
	statsInterval   = time.Minute
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sitework-worker: load config:", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg, "sitework-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewPrometheusMetrics()
	container, err := app.NewContainer(ctx, cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer func() { _ = container.Close() }()
	logger.Info("worker starting", "driver", container.DB.Driver())

	publisher, err := container.NewPublisher()
	if err != nil {
		if cfg.IsProduction() {
			return fmt.Errorf("connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, events will only be logged", "error", err)
		publisher = eventbus.NewNoopPublisher(logger)
	}
	defer func() { _ = publisher.Close() }()

	processor := container.NewOutboxProcessor(publisher)
	if err := processor.Start(ctx); err != nil {
		return fmt.Errorf("start outbox processor: %w", err)
	}
	defer processor.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { cleanupLoop(ctx, container, logger); return nil })
	g.Go(func() error { statsLoop(ctx, processor, logger); return nil })

	if cfg.WorkerHealthAddr != "" {
		registry := container.HealthRegistry()
		if breaker, ok := publisher.(*eventbus.BreakerPublisher); ok {
			registry.Register("broker", breakerChecker(breaker))
		}
		srv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           newHealthMux(processor, registry, metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
