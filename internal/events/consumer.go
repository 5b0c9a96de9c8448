package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/aweb-sistemas/vendas-orders-service/internal/config"
	"github.com/aweb-sistemas/vendas-orders-service/internal/service"
)

// PaymentEventType represents the type of payment gateway event.
type PaymentEventType string

const (
	PaymentEventAuthorized PaymentEventType = "payment.authorized"
	PaymentEventDeclined   PaymentEventType = "payment.declined"
)

// PaymentResultEvent is the settlement outcome published by the gateway.
type PaymentResultEvent struct {
	ID                string           `json:"id"`
	Type              PaymentEventType `json:"type"`
	OrderID           int64            `json:"order_id"`
	ExternalReference string           `json:"external_reference"`
	Details           string           `json:"details"`
	Timestamp         time.Time        `json:"timestamp"`
}

// KafkaConsumer consumes payment gateway events and settles the matching
// payments.
type KafkaConsumer struct {
	reader   *kafka.Reader
	payments *service.PaymentService
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewKafkaConsumer creates a new Kafka-based event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, payments *service.PaymentService, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.PaymentsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:   reader,
		payments: payments,
		logger:   logger.Named("event-consumer"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins consuming events. It blocks until the context is cancelled or
// Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting payment event consumer", zap.String("topic", c.reader.Config().Topic))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("payment event consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("message_read_failed", zap.Error(err))
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("message_received",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset))

	var event PaymentResultEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("event_unmarshal_failed", zap.Error(err))
		return
	}

	switch event.Type {
	case PaymentEventAuthorized:
		c.settle(ctx, &event, true)
	case PaymentEventDeclined:
		c.settle(ctx, &event, false)
	default:
		c.logger.Debug("event_ignored", zap.String("type", string(event.Type)))
	}
}

func (c *KafkaConsumer) settle(ctx context.Context, event *PaymentResultEvent, authorized bool) {
	c.logger.Info("settling payment from gateway event",
		zap.Int64("order_id", event.OrderID),
		zap.Bool("authorized", authorized))

	_, err := c.payments.ConfirmPayment(ctx, event.OrderID, authorized, event.ExternalReference, event.Details)
	if err != nil {
		c.logger.Error("payment_settlement_failed",
			zap.Int64("order_id", event.OrderID),
			zap.Error(err))
	}
}
