package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity is identified by its ID rather than its attributes.
type Entity interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

// AggregateRoot is a consistency boundary that records domain events for
// the outbox.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Version() int
}

// BaseAggregateRoot carries identity, audit timestamps, a mutation counter
// and the pending events of an aggregate.
type BaseAggregateRoot struct {
	id        uuid.UUID
	createdAt time.Time
	updatedAt time.Time
	version   int
	pending   []DomainEvent
}

// NewBaseAggregateRoot starts a new aggregate at version zero.
func NewBaseAggregateRoot() BaseAggregateRoot {
	now := time.Now().UTC()
	return BaseAggregateRoot{id: uuid.New(), createdAt: now, updatedAt: now}
}

// RehydrateBaseAggregateRoot restores persisted state with no pending events.
func RehydrateBaseAggregateRoot(id uuid.UUID, createdAt, updatedAt time.Time, version int) BaseAggregateRoot {
	return BaseAggregateRoot{id: id, createdAt: createdAt, updatedAt: updatedAt, version: version}
}

func (a BaseAggregateRoot) ID() uuid.UUID        { return a.id }
func (a BaseAggregateRoot) CreatedAt() time.Time { return a.createdAt }
func (a BaseAggregateRoot) UpdatedAt() time.Time { return a.updatedAt }
func (a BaseAggregateRoot) Version() int         { return a.version }

// Touch marks a mutation: it moves updatedAt forward and bumps the version.
func (a *BaseAggregateRoot) Touch() {
	a.updatedAt = time.Now().UTC()
	a.version++
}

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// DomainEvents returns the events recorded since the last clear.
func (a BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.pending
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}
