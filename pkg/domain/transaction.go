package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a money movement.
type TransactionType string

// Supported transaction types.
const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeRefund     TransactionType = "REFUND"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer,
		TransactionTypePayment, TransactionTypeRefund:
		return true
	}
	return false
}

// RequiresFromAccount reports whether the type debits a source account.
func (t TransactionType) RequiresFromAccount() bool {
	return t == TransactionTypeWithdrawal || t == TransactionTypeTransfer ||
		t == TransactionTypePayment
}

// RequiresToAccount reports whether the type credits a destination account.
func (t TransactionType) RequiresToAccount() bool {
	return t == TransactionTypeDeposit || t == TransactionTypeTransfer ||
		t == TransactionTypeRefund
}

// TransactionStatus is the lifecycle state of a transaction.
// PENDING is the only non-terminal status.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transitions.
func (s TransactionStatus) Terminal() bool {
	return s != TransactionStatusPending
}

// Frequency is the cadence of a recurring transaction.
type Frequency string

// Supported recurring frequencies.
const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// Next returns the next payment date after a successful run at now.
// The offset is anchored at now rather than the originally scheduled date,
// so a late run drifts the series forward.
func (f Frequency) Next(now time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return now.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return now.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return now.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return now.AddDate(0, 3, 0)
	case FrequencyYearly:
		return now.AddDate(1, 0, 0)
	}
	return now
}

// Metadata is an opaque key-value mapping attached to a transaction.
type Metadata map[string]any

// Transaction is the ledger record of one money-movement attempt.
//
// Invariants:
//   - Reference is globally unique, immutable, assigned once at creation.
//   - Amount is always positive.
//   - DEPOSIT carries a destination only, WITHDRAWAL a source only,
//     TRANSFER both.
type Transaction struct {
	ID              uuid.UUID
	Reference       string
	FromAccountID   *uuid.UUID
	ToAccountID     *uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	Type            TransactionType
	Status          TransactionStatus
	Description     string
	Metadata        Metadata
	Recurring       bool
	Frequency       Frequency
	NextPaymentDate *time.Time
	LastPaymentDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTransaction creates a PENDING transaction with a fresh reference.
func NewTransaction(from, to *uuid.UUID, amount decimal.Decimal, currency string,
	txType TransactionType, description string, metadata Metadata,
) *Transaction {
	now := time.Now()
	return &Transaction{
		ID:            uuid.New(),
		Reference:     uuid.NewString(),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Currency:      currency,
		Type:          txType,
		Status:        TransactionStatusPending,
		Description:   description,
		Metadata:      metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
