package orders

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/minhvub/coffeeshop-backend/pkg/logger"
)

// Consumer watches the order topic and surfaces new-order notifications.
type Consumer struct {
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds an order event consumer.
func NewConsumer(subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("order subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{subscription: subscription, logg: logg}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.process(ctx, msg)
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != EventOrderCreated {
		c.logg.Info(logCtx, "skipping non-order event")
		return
	}

	var envelope EventEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return
	}

	var payload OrderCreatedPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		return
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"order_id":    payload.OrderID.String(),
		"final_total": payload.FinalTotal.String(),
	})
	c.logg.Info(logCtx, "new order received")
}
