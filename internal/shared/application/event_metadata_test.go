package application

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stampedEvent struct {
	domain.BaseEvent
}

func newStampedEvent() *stampedEvent {
	return &stampedEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "building", "construction.substage.status_changed", time.Now())}
}

func TestStampEvents(t *testing.T) {
	t.Run("shares metadata across the command", func(t *testing.T) {
		correlationID := uuid.New()
		a, b := newStampedEvent(), newStampedEvent()

		meta := StampEvents([]domain.DomainEvent{a, b}, correlationID)

		assert.Equal(t, correlationID, meta.CorrelationID)
		assert.NotEqual(t, uuid.Nil, meta.CausationID)
		assert.Equal(t, meta, a.Metadata())
		assert.Equal(t, meta, b.Metadata())
	})

	t.Run("generates a correlation id when missing", func(t *testing.T) {
		meta := StampEvents(nil, uuid.Nil)
		assert.NotEqual(t, uuid.Nil, meta.CorrelationID)
	})
}
