package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents     = "booking.events"
	TopicTransactionEvents = "transaction.events"
)

// Event types carried on the topics above.
const (
	BookingResolved        = "booking.resolved"
	BookingCanceled        = "booking.canceled"
	BookingPayoutRequested = "booking.payout_requested"
	TransactionAccepted    = "transaction.accepted"
)

// EventSource identifies this service as the event producer.
const EventSource = "service-booking"

// BookingResolvedEvent signals that a booking of the transaction has been
// accepted or declined, so the transaction can re-evaluate its aggregation.
type BookingResolvedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

// BookingCanceledEvent signals a cancellation that may need a refund.
type BookingCanceledEvent struct {
	TransactionID  uuid.UUID `json:"transaction_id"`
	BookingID      uuid.UUID `json:"booking_id"`
	PreviousStatus string    `json:"previous_status"`
	Total          float64   `json:"total"`
	StartDate      time.Time `json:"start_date"`
}

// BookingPayoutRequestedEvent signals a completed booking awaiting payout.
type BookingPayoutRequestedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	VendorID      uuid.UUID `json:"vendor_id"`
}

// TransactionAcceptedEvent signals that every booking of the transaction has
// been resolved and payment captured; accepted bookings should confirm.
type TransactionAcceptedEvent struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}
