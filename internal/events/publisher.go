package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/domain"
)

const Topic = "storefront-orders"

const (
	OrderPlaced = "order.placed"
	OrderPaid   = "order.paid"
)

type OrderEvent struct {
	Type          string             `json:"event_type"`
	OrderID       string             `json:"order_id"`
	SessionID     string             `json:"session_id"`
	UserID        string             `json:"user_id,omitempty"`
	PaymentMethod string             `json:"payment_method"`
	Items         []domain.OrderItem `json:"items,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Currency      string             `json:"currency"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	timeout time.Duration
	writer  messageWriter
	logger  *zap.Logger
}

func NewKafkaPublisher(logger *zap.Logger, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaPublisher{timeout: 5 * time.Second, writer: w, logger: logger}
}

// New returns a kafka publisher, or a no-op one when no brokers are set.
func New(logger *zap.Logger, brokers []string) Publisher {
	if len(brokers) == 0 {
		logger.Info("kafka brokers not configured, order events disabled")
		return NopPublisher{}
	}
	return NewKafkaPublisher(logger, brokers...)
}

// Publish writes the event keyed by order id so events of one order stay in
// one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event for order %s: %w", event.Type, event.OrderID, err)
	}
	p.logger.Debug("order event published",
		zap.String("event_type", event.Type),
		zap.String("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
