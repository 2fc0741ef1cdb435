package settlement

import (
	"context"

	"github.com/google/uuid"
	bookingDomain "github.com/rentloop/service-booking/internal/domain/booking"
	"github.com/rentloop/service-booking/internal/events"
	"go.uber.org/zap"
)

// KafkaSettlement publishes booking lifecycle outcomes to the booking events
// topic for downstream aggregation, refund and payout handling. Callers skip
// it entirely for bookings of external transactions.
type KafkaSettlement struct {
	producer *events.Producer
	logger   *zap.Logger
}

// NewKafkaSettlement creates a new KafkaSettlement.
func NewKafkaSettlement(producer *events.Producer, logger *zap.Logger) *KafkaSettlement {
	return &KafkaSettlement{producer: producer, logger: logger}
}

// OnAcceptOrDecline notifies the transaction that one of its bookings has
// resolved, prompting it to re-evaluate its aggregation.
func (s *KafkaSettlement) OnAcceptOrDecline(ctx context.Context, transaction *bookingDomain.Transaction) error {
	event, err := events.NewCloudEvent(events.EventSource, events.BookingResolved, events.BookingResolvedEvent{
		TransactionID: transaction.TransactionID,
	})
	if err != nil {
		return err
	}
	return s.producer.PublishEvent(ctx, events.TopicBookingEvents, event)
}

// OnCancel publishes the cancellation with the status the booking held before
// it was canceled, so refund policy can depend on how far it had progressed.
func (s *KafkaSettlement) OnCancel(ctx context.Context, transaction *bookingDomain.Transaction, bk *bookingDomain.Booking, previousStatus bookingDomain.BookingStatus) error {
	event, err := events.NewCloudEvent(events.EventSource, events.BookingCanceled, events.BookingCanceledEvent{
		TransactionID:  transaction.TransactionID,
		BookingID:      bk.ID(),
		PreviousStatus: previousStatus.String(),
		Total:          bk.Total(),
		StartDate:      bk.StartDate(),
	})
	if err != nil {
		return err
	}

	s.logger.Info("settlement notified of cancellation",
		zap.String("booking_id", bk.ID().String()),
		zap.String("previous_status", previousStatus.String()),
	)
	return s.producer.PublishEvent(ctx, events.TopicBookingEvents, event)
}

// OnComplete requests a payout for the completed booking's vendor.
func (s *KafkaSettlement) OnComplete(ctx context.Context, transactionID, vendorID uuid.UUID) error {
	event, err := events.NewCloudEvent(events.EventSource, events.BookingPayoutRequested, events.BookingPayoutRequestedEvent{
		TransactionID: transactionID,
		VendorID:      vendorID,
	})
	if err != nil {
		return err
	}
	return s.producer.PublishEvent(ctx, events.TopicBookingEvents, event)
}
