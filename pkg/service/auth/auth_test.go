package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/banking/internal/fixtures"
	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/service/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*auth.Service, *fixtures.UoW) {
	t.Helper()
	uow := fixtures.NewUoW()
	cfg := &config.Jwt{Secret: "test-secret", Expiry: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.New(uow, cfg, logger), uow
}

func seedUser(t *testing.T, uow *fixtures.UoW, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@test.local",
		PasswordHash: string(hash),
	}
	require.NoError(t, uow.Users.Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	svc, uow := newService(t)
	ctx := context.Background()
	u := seedUser(t, uow, "s3cret-pass")

	t.Run("by username", func(t *testing.T) {
		got, err := svc.Login(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := svc.Login(ctx, "alice@test.local", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown identity", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "s3cret-pass")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	svc, uow := newService(t)
	u := seedUser(t, uow, "s3cret-pass")

	signed, err := svc.GenerateToken(u)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	userID, err := svc.CurrentUserID(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
}

func TestCurrentUserID_RejectsBadClaims(t *testing.T) {
	svc, _ := newService(t)

	t.Run("missing user_id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{})
		_, err := svc.CurrentUserID(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("malformed user_id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "not-a-uuid"})
		_, err := svc.CurrentUserID(token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
