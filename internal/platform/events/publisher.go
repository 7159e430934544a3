package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
)

// OrderEvent is published whenever an order changes status.
type OrderEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Status     string    `json:"status"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurredAt"`
}

// StockEvent is published whenever product stock is reserved or released.
type StockEvent struct {
	ProductID  string    `json:"productId"`
	Delta      int       `json:"delta"`
	Stock      int       `json:"stock"`
	Reason     string    `json:"reason"`
	OrderID    string    `json:"orderId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits order and stock events for downstream consumers.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) (string, error)
	PublishStockEvent(ctx context.Context, event StockEvent) (string, error)
}

// PubSubPublisher publishes events to the configured Pub/Sub topics.
type PubSubPublisher struct {
	orderTopic *pubsub.Topic
	stockTopic *pubsub.Topic
	marshal    func(any) ([]byte, error)
}

// NewPubSubPublisher constructs a Pub/Sub backed event publisher. Either topic
// may be nil, in which case the corresponding events are dropped silently.
func NewPubSubPublisher(orderTopic, stockTopic *pubsub.Topic) (*PubSubPublisher, error) {
	if orderTopic == nil && stockTopic == nil {
		return nil, errors.New("pubsub publisher: at least one topic is required")
	}
	return &PubSubPublisher{
		orderTopic: orderTopic,
		stockTopic: stockTopic,
		marshal:    json.Marshal,
	}, nil
}

// PublishOrderEvent enqueues an order status message on the order topic.
func (p *PubSubPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) (string, error) {
	if p == nil || p.orderTopic == nil {
		return "", nil
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal order event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "status", event.Status)

	result := p.orderTopic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish order event: %w", err)
	}
	return id, nil
}

// PublishStockEvent enqueues a stock adjustment message on the stock topic.
func (p *PubSubPublisher) PublishStockEvent(ctx context.Context, event StockEvent) (string, error) {
	if p == nil || p.stockTopic == nil {
		return "", nil
	}

	data, err := p.marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal stock event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "productId", event.ProductID)
	setAttr(attrs, "reason", event.Reason)

	result := p.stockTopic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish stock event: %w", err)
	}
	return id, nil
}

// NopPublisher discards all events. Used when event topics are not configured.
type NopPublisher struct{}

// PublishOrderEvent implements Publisher.
func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) (string, error) { return "", nil }

// PublishStockEvent implements Publisher.
func (NopPublisher) PublishStockEvent(context.Context, StockEvent) (string, error) { return "", nil }

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
