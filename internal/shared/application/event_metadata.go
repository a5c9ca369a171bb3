package application

import (
	"github.com/felixgeelhaar/sitework/internal/shared/domain"
	"github.com/google/uuid"
)

// StampEvents gives every event of one command the same metadata: the
// caller's correlation ID, or a fresh one when it is nil, and one causation
// ID for the command. Events that cannot carry metadata are left alone.
func StampEvents(events []domain.DomainEvent, correlationID uuid.UUID) domain.EventMetadata {
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}
	meta := domain.EventMetadata{CorrelationID: correlationID, CausationID: uuid.New()}

	for _, event := range events {
		if e, ok := event.(interface{ SetMetadata(domain.EventMetadata) }); ok {
			e.SetMetadata(meta)
		}
	}
	return meta
}
