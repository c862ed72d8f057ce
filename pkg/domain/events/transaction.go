// Package events defines the outcome events emitted after transaction
// processing. Delivery is best-effort and at-least-once; consumers must
// dedupe by TransactionID.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TypeTransaction is the event-type tag every transaction outcome is
// published under.
const TypeTransaction = "transaction"

// TransactionEvent is the outcome of one processed transaction.
// FromAccount and ToAccount carry account numbers and may be empty
// depending on the transaction type.
type TransactionEvent struct {
	TransactionID string          `json:"transactionId"`
	FromAccount   string          `json:"fromAccount,omitempty"`
	ToAccount     string          `json:"toAccount,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Description   string          `json:"description"`
	Timestamp     time.Time       `json:"timestamp"`
}

// EventType implements eventbus.Event.
func (TransactionEvent) EventType() string { return TypeTransaction }
