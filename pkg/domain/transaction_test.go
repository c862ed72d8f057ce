package domain_test

import (
	"testing"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyNext(t *testing.T) {
	now := time.Date(2025, 1, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency domain.Frequency
		want      time.Time
	}{
		{domain.FrequencyDaily, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)},
		{domain.FrequencyWeekly, time.Date(2025, 2, 7, 10, 0, 0, 0, time.UTC)},
		// AddDate normalizes Jan 31 + 1 month to Mar 3.
		{domain.FrequencyMonthly, time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)},
		{domain.FrequencyQuarterly, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)},
		{domain.FrequencyYearly, time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.frequency.Next(now))
		})
	}

	t.Run("unknown frequency returns now", func(t *testing.T) {
		assert.Equal(t, now, domain.Frequency("HOURLY").Next(now))
	})
}

func TestTransactionTypeRequirements(t *testing.T) {
	tests := []struct {
		txType       domain.TransactionType
		requiresFrom bool
		requiresTo   bool
	}{
		{domain.TransactionTypeDeposit, false, true},
		{domain.TransactionTypeWithdrawal, true, false},
		{domain.TransactionTypeTransfer, true, true},
		{domain.TransactionTypePayment, true, false},
		{domain.TransactionTypeRefund, false, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.requiresFrom, tt.txType.RequiresFromAccount())
			assert.Equal(t, tt.requiresTo, tt.txType.RequiresToAccount())
		})
	}
}

func TestTransactionStatusTerminal(t *testing.T) {
	assert.False(t, domain.TransactionStatusPending.Terminal())
	assert.True(t, domain.TransactionStatusCompleted.Terminal())
	assert.True(t, domain.TransactionStatusFailed.Terminal())
	assert.True(t, domain.TransactionStatusCancelled.Terminal())
}

func TestNewTransaction(t *testing.T) {
	from := uuid.New()
	to := uuid.New()
	amount := decimal.NewFromFloat(25.50)

	tx := domain.NewTransaction(&from, &to, amount, "USD",
		domain.TransactionTypeTransfer, "rent", domain.Metadata{"month": "jan"})

	require.NotNil(t, tx)
	assert.Equal(t, domain.TransactionStatusPending, tx.Status)
	assert.NotEmpty(t, tx.Reference)
	assert.Equal(t, &from, tx.FromAccountID)
	assert.Equal(t, &to, tx.ToAccountID)
	assert.True(t, tx.Amount.Equal(amount))
	assert.False(t, tx.Recurring)

	// References are unique per creation.
	other := domain.NewTransaction(&from, &to, amount, "USD",
		domain.TransactionTypeTransfer, "rent", nil)
	assert.NotEqual(t, tx.Reference, other.Reference)
}
