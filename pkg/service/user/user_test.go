package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/banking/internal/fixtures"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/service/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*user.Service, *fixtures.UoW) {
	t.Helper()
	uow := fixtures.NewUoW()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return user.New(uow, logger), uow
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "alice@test.local", "s3cret-pass", "Alice", "Smith")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Alice Smith", u.FullName())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "other@test.local", "pw123456", "Other", "User")
		assert.ErrorIs(t, err, domain.ErrIntegrityConflict)
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := svc.Get(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, got.Email)

		_, err = svc.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestEmailForAccountNumber(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "bob", "bob@test.local", "s3cret-pass", "Bob", "Jones")
	require.NoError(t, err)
	a, err := domain.NewAccount(u.ID, domain.AccountTypeChecking, "USD", decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, uow.Accounts.Create(ctx, a))

	email, err := svc.EmailForAccountNumber(ctx, a.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, "bob@test.local", email)

	_, err = svc.EmailForAccountNumber(ctx, "CHE0000000000")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
