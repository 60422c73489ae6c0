package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventOrderCreated = "order.created"

// EventEnvelope is the stable payload structure published to the order topic.
type EventEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderCreatedPayload describes a freshly placed order.
type OrderCreatedPayload struct {
	OrderID      uuid.UUID       `json:"orderId"`
	CustomerName string          `json:"customerName"`
	Status       string          `json:"status"`
	FinalTotal   decimal.Decimal `json:"finalTotal"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// EventPublisher emits order lifecycle events.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, payload OrderCreatedPayload) error
}

type pubsubPublisher struct {
	publisher *pubsub.Publisher
}

// NewPubSubPublisher publishes order events to the configured topic.
func NewPubSubPublisher(publisher *pubsub.Publisher) (EventPublisher, error) {
	if publisher == nil {
		return nil, fmt.Errorf("order publisher required")
	}
	return &pubsubPublisher{publisher: publisher}, nil
}

func (p *pubsubPublisher) PublishOrderCreated(ctx context.Context, payload OrderCreatedPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	envelope := EventEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type": EventOrderCreated,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", EventOrderCreated, err)
	}
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher discards events. Used when Pub/Sub is disabled and in tests.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderCreated(context.Context, OrderCreatedPayload) error {
	return nil
}
