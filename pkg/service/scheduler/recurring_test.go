package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/banking/infra/eventbus"
	"github.com/amirasaad/banking/internal/fixtures"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/notification"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/amirasaad/banking/pkg/service/scheduler"
	"github.com/amirasaad/banking/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScheduler(t *testing.T, interval time.Duration) (*scheduler.Scheduler, *fixtures.UoW) {
	t.Helper()
	uow := fixtures.NewUoW()
	logger := discardLogger()
	processor := transaction.New(uow, infraeventbus.NewWithMemory(logger), logger)
	emails := notification.NewEmailSender("no-reply@bank.local", 100, time.Hour, logger)
	s := scheduler.New(uow, processor, emails, interval, logger,
		scheduler.WithClock(func() time.Time { return testNow }))
	return s, uow
}

func seedOwnerAccount(t *testing.T, uow *fixtures.UoW, balance decimal.Decimal) *domain.Account {
	t.Helper()
	userID := uuid.New()
	require.NoError(t, uow.Users.Create(context.Background(), &domain.User{
		ID:        userID,
		Username:  "u-" + userID.String()[:8],
		Email:     userID.String()[:8] + "@test.local",
		FirstName: "Test",
		LastName:  "Owner",
	}))
	a, err := domain.NewAccount(userID, domain.AccountTypeChecking, "USD", balance)
	require.NoError(t, err)
	require.NoError(t, uow.Accounts.Create(context.Background(), a))
	return a
}

func seedRecurring(t *testing.T, uow *fixtures.UoW, from *domain.Account, amount decimal.Decimal, due time.Time) *domain.Transaction {
	t.Helper()
	item := domain.NewTransaction(&from.ID, nil, amount, "USD",
		domain.TransactionTypeWithdrawal, "gym membership", nil)
	item.Recurring = true
	item.Frequency = domain.FrequencyMonthly
	item.NextPaymentDate = &due
	require.NoError(t, uow.Ledger.Create(context.Background(), item))
	return item
}

func TestRunOnce_ProcessesDueItem(t *testing.T) {
	s, uow := newTestScheduler(t, time.Hour)
	ctx := context.Background()
	from := seedOwnerAccount(t, uow, decimal.NewFromInt(100))
	due := testNow.Add(-24 * time.Hour)
	item := seedRecurring(t, uow, from, decimal.NewFromInt(30), due)

	s.RunOnce(ctx)

	stored, err := uow.Ledger.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, stored.Status)
	require.NotNil(t, stored.LastPaymentDate)
	assert.True(t, stored.LastPaymentDate.Equal(testNow))
	require.NotNil(t, stored.NextPaymentDate)
	assert.True(t, stored.NextPaymentDate.Equal(domain.FrequencyMonthly.Next(testNow)),
		"next payment anchors at the run time, not the original due date")

	balance, err := uow.Accounts.Balance(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)))

	// The movement itself is a fresh ledger row tagged with the recurring id.
	txs, err := uow.Ledger.ListByAccount(ctx, from.ID, repository.Page{Limit: 100})
	require.NoError(t, err)
	var movement *domain.Transaction
	for _, tx := range txs {
		if tx.ID != item.ID {
			movement = tx
		}
	}
	require.NotNil(t, movement)
	assert.Equal(t, item.ID.String(), movement.Metadata["recurringTransactionId"])
	assert.Equal(t, true, movement.Metadata["isRecurringPayment"])
}

func TestRunOnce_RecordsFailureAndKeepsNextDate(t *testing.T) {
	s, uow := newTestScheduler(t, time.Hour)
	ctx := context.Background()
	from := seedOwnerAccount(t, uow, decimal.NewFromInt(10))
	due := testNow.Add(-24 * time.Hour)
	item := seedRecurring(t, uow, from, decimal.NewFromInt(30), due)

	s.RunOnce(ctx)

	stored, err := uow.Ledger.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, stored.Status)
	require.NotNil(t, stored.LastPaymentDate)
	assert.True(t, stored.LastPaymentDate.Equal(testNow))
	require.NotNil(t, stored.NextPaymentDate)
	assert.True(t, stored.NextPaymentDate.Equal(due),
		"a failed item stays due so the next scan retries it")

	balance, err := uow.Accounts.Balance(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(10)), "no partial debit on failure")
}

func TestRunOnce_OneFailureDoesNotAbortBatch(t *testing.T) {
	s, uow := newTestScheduler(t, time.Hour)
	ctx := context.Background()
	due := testNow.Add(-time.Hour)

	broke := seedOwnerAccount(t, uow, decimal.NewFromInt(5))
	funded := seedOwnerAccount(t, uow, decimal.NewFromInt(100))
	failing := seedRecurring(t, uow, broke, decimal.NewFromInt(50), due)
	passing := seedRecurring(t, uow, funded, decimal.NewFromInt(50), due)

	s.RunOnce(ctx)

	storedFailing, err := uow.Ledger.Get(ctx, failing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, storedFailing.Status)

	storedPassing, err := uow.Ledger.Get(ctx, passing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, storedPassing.Status)

	balance, err := uow.Accounts.Balance(ctx, funded.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(50)))
}

func TestRunOnce_IgnoresNotYetDue(t *testing.T) {
	s, uow := newTestScheduler(t, time.Hour)
	ctx := context.Background()
	from := seedOwnerAccount(t, uow, decimal.NewFromInt(100))
	future := testNow.Add(24 * time.Hour)
	item := seedRecurring(t, uow, from, decimal.NewFromInt(30), future)

	s.RunOnce(ctx)

	stored, err := uow.Ledger.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, stored.Status)
	assert.Nil(t, stored.LastPaymentDate)

	balance, err := uow.Accounts.Balance(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(100)))
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t, 10*time.Millisecond)
	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop() // must not hang or panic
}
