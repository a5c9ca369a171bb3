// Package eventbus delivers outbox messages to the message broker.
package eventbus

import (
	"context"
)

// Publisher sends serialized events to a message broker.
type Publisher interface {
	// Publish sends payload under routingKey.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close releases the broker connection.
	Close() error
}
