package domain_test

import (
	"strings"
	"testing"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	userID := uuid.New()

	t.Run("valid account", func(t *testing.T) {
		a, err := domain.NewAccount(userID, domain.AccountTypeChecking, "USD", decimal.NewFromInt(100))
		require.NoError(t, err)
		assert.Equal(t, userID, a.UserID)
		assert.Equal(t, domain.AccountStatusActive, a.Status)
		assert.True(t, a.Balance.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, domain.AccountNumberFor(domain.AccountTypeChecking, a.ID), a.AccountNumber)
	})

	tests := []struct {
		name        string
		accountType domain.AccountType
		currency    string
		balance     decimal.Decimal
	}{
		{"unknown type", domain.AccountType("BROKERAGE"), "USD", decimal.Zero},
		{"lowercase currency", domain.AccountTypeSavings, "usd", decimal.Zero},
		{"short currency", domain.AccountTypeSavings, "US", decimal.Zero},
		{"negative initial balance", domain.AccountTypeSavings, "USD", decimal.NewFromInt(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewAccount(userID, tt.accountType, tt.currency, tt.balance)
			assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		})
	}
}

func TestAccountNumberFor(t *testing.T) {
	id := uuid.New()

	number := domain.AccountNumberFor(domain.AccountTypeSavings, id)
	assert.Len(t, number, 13)
	assert.True(t, strings.HasPrefix(number, "SAV"))
	for _, r := range number[3:] {
		assert.True(t, r >= '0' && r <= '9', "expected digit, got %q", r)
	}

	// Derivation is a pure function of type and id.
	assert.Equal(t, number, domain.AccountNumberFor(domain.AccountTypeSavings, id))
	assert.True(t, strings.HasPrefix(domain.AccountNumberFor(domain.AccountTypeFixedDeposit, id), "FIX"))
}

func TestAccountCanClose(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.AccountStatus
		balance decimal.Decimal
		want    bool
	}{
		{"active zero balance", domain.AccountStatusActive, decimal.Zero, true},
		{"active with funds", domain.AccountStatusActive, decimal.NewFromInt(5), false},
		{"already closed", domain.AccountStatusClosed, decimal.Zero, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &domain.Account{Status: tt.status, Balance: tt.balance}
			assert.Equal(t, tt.want, a.CanClose())
		})
	}
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, domain.IsValidCurrency("USD"))
	assert.True(t, domain.IsValidCurrency("EUR"))
	assert.False(t, domain.IsValidCurrency("usd"))
	assert.False(t, domain.IsValidCurrency("USDX"))
	assert.False(t, domain.IsValidCurrency("U1D"))
	assert.False(t, domain.IsValidCurrency(""))
}
