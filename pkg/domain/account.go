// Package domain holds the core banking entities and their invariants:
// accounts, transactions, users, and the errors shared across services.
package domain

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies an account.
type AccountType string

// Supported account types.
const (
	AccountTypeChecking     AccountType = "CHECKING"
	AccountTypeSavings      AccountType = "SAVINGS"
	AccountTypeCredit       AccountType = "CREDIT"
	AccountTypeFixedDeposit AccountType = "FIXED_DEPOSIT"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeFixedDeposit:
		return true
	}
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	// AccountStatusActive is the state of an operating account.
	AccountStatusActive AccountStatus = "ACTIVE"
	// AccountStatusClosed is terminal; a closed account holds a zero balance
	// and accepts no further transactions.
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Account represents a user's financial account.
//
// Invariants:
//   - Balance is never negative.
//   - Status CLOSED implies Balance == 0 and is terminal.
//   - AccountNumber is unique and derived from the account type and id.
type Account struct {
	ID            uuid.UUID
	AccountNumber string
	UserID        uuid.UUID
	Type          AccountType
	Balance       decimal.Decimal
	Currency      string
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewAccount builds an ACTIVE account for the given owner. The id is reserved
// up front so the human-readable account number can be derived before the
// single insert; there is no second write to patch the number in.
func NewAccount(userID uuid.UUID, accountType AccountType, currency string, initialBalance decimal.Decimal) (*Account, error) {
	if !accountType.IsValid() {
		return nil, fmt.Errorf("%w: unsupported account type %q", ErrInvalidOperation, accountType)
	}
	if !IsValidCurrency(currency) {
		return nil, fmt.Errorf("%w: invalid currency code %q", ErrInvalidOperation, currency)
	}
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("%w: initial balance cannot be negative", ErrInvalidOperation)
	}
	id := uuid.New()
	now := time.Now()
	return &Account{
		ID:            id,
		AccountNumber: AccountNumberFor(accountType, id),
		UserID:        userID,
		Type:          accountType,
		Balance:       initialBalance,
		Currency:      currency,
		Status:        AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AccountNumberFor derives the human-readable account number: the first three
// letters of the account type followed by ten digits taken from the id.
func AccountNumberFor(accountType AccountType, id uuid.UUID) string {
	n := binary.BigEndian.Uint64(id[:8]) % 1e10
	return fmt.Sprintf("%s%010d", accountType[:3], n)
}

// CanClose reports whether the account may transition ACTIVE -> CLOSED.
// Only active accounts holding exactly zero may close.
func (a *Account) CanClose() bool {
	return a.Status == AccountStatusActive && a.Balance.IsZero()
}

// IsValidCurrency reports whether code is a 3-letter uppercase ISO 4217 code.
func IsValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
