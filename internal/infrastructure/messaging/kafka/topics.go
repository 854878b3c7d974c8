package kafka

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderflow/intake/internal/domain/order"
)

// Topics carrying order lifecycle events.
const (
	TopicOrderProcessed = "order.processed"
	TopicOrderApproved  = "order.approved"
)

// Event types carried in envelopes.
const (
	EventOrderProcessed = "order_processed"
	EventOrderApproved  = "order_approved"
)

// EventEnvelope wraps an order snapshot for downstream consumers. EventID is
// unique per publish so consumers can deduplicate redeliveries.
type EventEnvelope struct {
	EventID    string       `json:"event_id"`
	EventType  string       `json:"event_type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      *order.Order `json:"order"`
}

// NewEnvelope stamps an order snapshot with identity and time.
func NewEnvelope(eventType string, o *order.Order) EventEnvelope {
	return EventEnvelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		Order:      o,
	}
}
