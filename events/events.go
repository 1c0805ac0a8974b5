// Package events publishes and consumes domain events over Kafka.
//
// Every event is wrapped in an Envelope and serialized as JSON. The
// envelope carries a stable event name that consumers dispatch on, and
// a partition key so events about the same aggregate stay ordered.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Domain event names.
const (
	UserRegistered = "user.registered"
	OrderPlaced    = "order.placed"
	OrderCancelled = "order.cancelled"
)

// Envelope wraps a domain event payload with delivery metadata.
type Envelope struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}

// NewEnvelope builds an envelope for the given event name and payload.
func NewEnvelope(name string, payload map[string]any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
