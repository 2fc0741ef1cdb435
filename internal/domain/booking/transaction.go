package booking

import "github.com/google/uuid"

// TransactionType classifies how a booking's parent transaction is settled.
type TransactionType string

const (
	TransactionTypeMarketplace TransactionType = "marketplace"
	TransactionTypeBid         TransactionType = "bid"
	TransactionTypeInvoice     TransactionType = "invoice"

	// TransactionTypeExternal marks transactions settled entirely outside
	// this system: no refund, payout or settlement delegation ever happens
	// for their bookings.
	TransactionTypeExternal TransactionType = "external"
)

// Transaction is the read model of a booking's parent transaction. Bookings
// belonging to one transaction are accepted/declined/confirmed as a group by
// the settlement side.
type Transaction struct {
	TransactionID uuid.UUID
	Type          TransactionType
	UserID        *uuid.UUID
}
