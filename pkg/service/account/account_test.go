package account_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/amirasaad/banking/internal/fixtures"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/service/account"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T) (*account.Service, *fixtures.UoW) {
	t.Helper()
	uow := fixtures.NewUoW()
	return account.New(uow, discardLogger()), uow
}

func seedUser(t *testing.T, uow *fixtures.UoW) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, uow.Users.Create(context.Background(), &domain.User{
		ID:       id,
		Username: "u-" + id.String()[:8],
		Email:    id.String()[:8] + "@test.local",
	}))
	return id
}

func TestOpen(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()
	userID := seedUser(t, uow)

	t.Run("creates active account with derived number", func(t *testing.T) {
		a, err := svc.Open(ctx, userID, domain.AccountTypeSavings, "EUR", decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusActive, a.Status)
		assert.Equal(t, domain.AccountNumberFor(domain.AccountTypeSavings, a.ID), a.AccountNumber)

		stored, err := uow.Accounts.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(50)))
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := svc.Open(ctx, uuid.New(), domain.AccountTypeSavings, "EUR", decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := svc.Open(ctx, userID, domain.AccountType("BROKERAGE"), "EUR", decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	})

	t.Run("rejects negative initial balance", func(t *testing.T) {
		_, err := svc.Open(ctx, userID, domain.AccountTypeSavings, "EUR", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	})
}

func TestClose(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()
	userID := seedUser(t, uow)

	t.Run("closes zero-balance account", func(t *testing.T) {
		a, err := svc.Open(ctx, userID, domain.AccountTypeChecking, "USD", decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, svc.Close(ctx, a.ID, userID))

		stored, err := uow.Accounts.Get(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusClosed, stored.Status)

		// CLOSED is terminal.
		err = svc.Close(ctx, a.ID, userID)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	})

	t.Run("rejects non-zero balance", func(t *testing.T) {
		a, err := svc.Open(ctx, userID, domain.AccountTypeChecking, "USD", decimal.NewFromInt(1))
		require.NoError(t, err)
		err = svc.Close(ctx, a.ID, userID)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	})

	t.Run("rejects foreign caller", func(t *testing.T) {
		a, err := svc.Open(ctx, userID, domain.AccountTypeChecking, "USD", decimal.Zero)
		require.NoError(t, err)
		err = svc.Close(ctx, a.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	})

	t.Run("unknown account", func(t *testing.T) {
		err := svc.Close(ctx, uuid.New(), userID)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestIsOwnerAndBalance(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()
	userID := seedUser(t, uow)
	a, err := svc.Open(ctx, userID, domain.AccountTypeChecking, "USD", decimal.NewFromInt(75))
	require.NoError(t, err)

	owner, err := svc.IsOwner(ctx, a.ID, userID)
	require.NoError(t, err)
	assert.True(t, owner)

	owner, err = svc.IsOwner(ctx, a.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, owner)

	balance, err := svc.Balance(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(75)))

	_, err = svc.Balance(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// Concurrent deltas against one account must serialize through the
// conditional update and converge to the exact arithmetic sum.
func TestApplyDelta_ConcurrentConvergence(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()
	userID := seedUser(t, uow)
	a, err := svc.Open(ctx, userID, domain.AccountTypeChecking, "USD", decimal.NewFromInt(1000))
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		delta := decimal.NewFromInt(int64(i%2*2 - 1)) // alternate -1, +1
		go func() {
			defer wg.Done()
			assert.NoError(t, uow.Accounts.ApplyDelta(ctx, a.ID, delta))
		}()
	}
	wg.Wait()

	balance, err := svc.Balance(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1000)), "balance = %s, want 1000", balance)
}

// The guard must reject a debit that would go negative, even under
// contention, and never partially apply.
func TestApplyDelta_GuardNeverGoesNegative(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()
	userID := seedUser(t, uow)
	a, err := svc.Open(ctx, userID, domain.AccountTypeChecking, "USD", decimal.NewFromInt(5))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- uow.Accounts.ApplyDelta(ctx, a.ID, decimal.NewFromInt(-1))
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 5, succeeded, "exactly the covered debits may succeed")

	balance, err := svc.Balance(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	assert.False(t, balance.IsNegative())
}
