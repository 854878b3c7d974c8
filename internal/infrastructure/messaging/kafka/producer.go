// Package kafka publishes order lifecycle events to a Kafka cluster.
package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/orderflow/intake/internal/domain/order"
	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
	"github.com/orderflow/intake/pkg/errors"
)

// ProducerConfig holds configuration for the Producer.
type ProducerConfig struct {
	Brokers      []string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer emits order events keyed by order ID, so all events for one order
// land on the same partition in publish order.
type Producer struct {
	writer writerInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer creates a Producer connected to the configured brokers.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("kafka brokers must not be empty")
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Producer{writer: writer, logger: logger.Named("kafka")}, nil
}

// OrderProcessed announces a freshly assembled order.
func (p *Producer) OrderProcessed(ctx context.Context, o *order.Order) error {
	return p.publish(ctx, TopicOrderProcessed, NewEnvelope(EventOrderProcessed, o))
}

// OrderApproved announces an order status transition to approved.
func (p *Producer) OrderApproved(ctx context.Context, o *order.Order) error {
	return p.publish(ctx, TopicOrderApproved, NewEnvelope(EventOrderApproved, o))
}

func (p *Producer) publish(ctx context.Context, topic string, env EventEnvelope) error {
	if p.closed.Load() {
		return errors.New(errors.ErrCodeMessagingError, "producer closed")
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(env.Order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(env.EventID)},
			{Key: "event_type", Value: []byte(env.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "write kafka message")
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", env.EventID),
		logging.String("order_id", env.Order.ID),
	)
	return nil
}

// Close flushes buffered messages and releases the writer.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
