// Package events publishes cart activity and catalog sync requests to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/segmentio/kafka-go"
)

type Type string

const (
	TypeCartItemAdded       Type = "cart.item_added"
	TypeCartItemRemoved     Type = "cart.item_removed"
	TypeCartQuantityUpdated Type = "cart.quantity_updated"
	TypeCartCleared         Type = "cart.cleared"
	TypeCatalogSyncRequest  Type = "catalog.sync_requested"
)

type Event struct {
	Type      Type                   `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	ProductID string                 `json:"product_id,omitempty"`
	Category  models.Category        `json:"category,omitempty"`
	Quantity  int                    `json:"quantity,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Key partitions cart events by session and catalog events by category.
func (e Event) Key() string {
	if e.SessionID != "" {
		return e.SessionID
	}
	return string(e.Category)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}

// KafkaPublisher writes JSON events; the topic is chosen per message.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(brokers []string, logger *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Published %s to %s", event.Type, topic)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, event Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// Decode parses a message value produced by Publish.
func Decode(value []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(value, &event); err != nil {
		return Event{}, fmt.Errorf("failed to parse event: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("failed to parse event: missing type")
	}
	return event, nil
}
