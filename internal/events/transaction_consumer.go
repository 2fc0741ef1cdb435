package events

import (
	"context"

	"github.com/rentloop/service-booking/internal/application"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TransactionEventConsumer listens to transaction events and confirms the
// accepted bookings of transactions whose aggregation resolved.
type TransactionEventConsumer struct {
	consumer *Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewTransactionEventConsumer creates a new TransactionEventConsumer.
func NewTransactionEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *TransactionEventConsumer {
	consumer := NewConsumer(brokers, groupID, TopicTransactionEvents, logger)
	return &TransactionEventConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming transaction events. This blocks until the context is cancelled.
func (c *TransactionEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *TransactionEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *TransactionEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from transaction topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case TransactionAccepted:
		return c.handleTransactionAccepted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled transaction event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *TransactionEventConsumer) handleTransactionAccepted(ctx context.Context, cloudEvent *CloudEvent) error {
	var evt TransactionAcceptedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse TransactionAcceptedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing transaction accepted event",
		zap.String("transaction_id", evt.TransactionID.String()),
	)

	confirmed, err := c.service.ConfirmAcceptedBookings(ctx, evt.TransactionID)
	if err != nil {
		c.logger.Error("failed to confirm bookings after transaction acceptance",
			zap.String("transaction_id", evt.TransactionID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("bookings confirmed after transaction acceptance",
		zap.String("transaction_id", evt.TransactionID.String()),
		zap.Int("confirmed", len(confirmed)),
	)
	return nil
}
