package domain

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is something that happened inside an aggregate.
type DomainEvent interface {
	EventID() uuid.UUID
	AggregateID() uuid.UUID
	AggregateType() string
	RoutingKey() string
	OccurredAt() time.Time
	Metadata() EventMetadata
}

// EventMetadata carries tracing information for an event.
type EventMetadata struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	CausationID   uuid.UUID `json:"causation_id"`
}

// BaseEvent implements the identity part of DomainEvent.
// Fields are exported so events serialize to the outbox as plain JSON.
type BaseEvent struct {
	ID            uuid.UUID     `json:"event_id"`
	Aggregate     uuid.UUID     `json:"aggregate_id"`
	AggregateKind string        `json:"aggregate_type"`
	Key           string        `json:"routing_key"`
	At            time.Time     `json:"occurred_at"`
	Meta          EventMetadata `json:"metadata"`
}

// NewBaseEvent creates a base event that occurred at the given instant.
func NewBaseEvent(aggregateID uuid.UUID, aggregateType, routingKey string, at time.Time) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
		Key:           routingKey,
		At:            at.UTC(),
	}
}

func (e BaseEvent) EventID() uuid.UUID      { return e.ID }
func (e BaseEvent) AggregateID() uuid.UUID  { return e.Aggregate }
func (e BaseEvent) AggregateType() string   { return e.AggregateKind }
func (e BaseEvent) RoutingKey() string      { return e.Key }
func (e BaseEvent) OccurredAt() time.Time   { return e.At }
func (e BaseEvent) Metadata() EventMetadata { return e.Meta }

// SetMetadata attaches tracing metadata.
func (e *BaseEvent) SetMetadata(metadata EventMetadata) {
	e.Meta = metadata
}
