package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/felixgeelhaar/sitework/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/sitework/pkg/observability"
)

// ProcessorConfig tunes polling and retry behavior.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns the worker defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     500 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

// Processor relays construction events from the outbox table to the broker.
// A message is marked published only after the publisher returns nil, so
// delivery is at least once.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics
	stats     statsRecorder

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewProcessor wires a processor. Nil logger and metrics fall back to the
// defaults.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger, metrics observability.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start launches the polling loop. Calling it on a running processor is a
// no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)
	return nil
}

// Stop cancels the loop and waits for the batch in flight to finish.
func (p *Processor) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

// ProcessOnce relays a single batch synchronously.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	return p.processBatch(ctx)
}

// GetStats returns a snapshot of processor activity.
func (p *Processor) GetStats() Stats {
	s := p.stats.snapshot()
	s.IsRunning = p.IsRunning()
	return s
}

func (p *Processor) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.processBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

func (p *Processor) processBatch(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.stats.fail(err)
		return err
	}

	lag := p.stats.polled(time.Now(), messages)
	p.metrics.Gauge(observability.MetricOutboxLag, lag)

	for _, msg := range messages {
		if !p.relay(ctx, msg) {
			break
		}
	}
	return nil
}

// relay publishes one message and reports whether the batch should go on.
// An open breaker ends the batch without charging a retry to the message.
func (p *Processor) relay(ctx context.Context, msg *Message) bool {
	correlationID := correlationIDOf(msg)
	pubCtx := observability.WithCorrelationID(ctx, correlationID)

	err := p.publisher.Publish(pubCtx, msg.RoutingKey, msg.Payload)
	switch {
	case errors.Is(err, eventbus.ErrBrokerUnavailable):
		p.stats.fail(err)
		p.logger.Warn("broker unavailable, deferring outbox batch", "id", msg.ID)
		return false
	case err != nil:
		p.onPublishError(ctx, msg, correlationID, err)
		return true
	}

	if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
		p.logger.Error("failed to mark message as published",
			"id", msg.ID,
			"event_id", msg.EventID,
			"error", err,
		)
		return true
	}
	p.stats.published()
	p.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", msg.RoutingKey))
	return true
}

func (p *Processor) onPublishError(ctx context.Context, msg *Message, correlationID string, err error) {
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		observability.CorrelationIDKey, correlationID,
		"attempt", msg.RetryCount+1,
		"error", err,
	)
	p.metrics.Counter(observability.MetricEventsFailed, 1, observability.T("routing_key", msg.RoutingKey))

	attempt := msg.RetryCount + 1
	if p.config.MaxRetries <= 0 || attempt >= p.config.MaxRetries {
		p.stats.deadLettered(err)
		if markErr := p.repo.MarkDead(ctx, msg.ID, err.Error()); markErr != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	p.stats.retried(err)
	next := time.Now().Add(p.retryBackoff(attempt))
	if markErr := p.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		p.logger.Error("failed to schedule retry", "id", msg.ID, "error", markErr)
	}
}

// retryBackoff is base * 2^(attempt-1), capped at RetryBackoffMax.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	base, limit := p.config.RetryBackoffBase, p.config.RetryBackoffMax
	if base <= 0 {
		base = time.Second
	}
	if limit <= 0 {
		limit = time.Minute
	}

	d := base
	for range attempt - 1 {
		if d >= limit {
			break
		}
		d *= 2
	}
	return min(d, limit)
}

func correlationIDOf(msg *Message) string {
	var metadata domain.EventMetadata
	if len(msg.Metadata) == 0 || json.Unmarshal(msg.Metadata, &metadata) != nil {
		return ""
	}
	return metadata.CorrelationID.String()
}
