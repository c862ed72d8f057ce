// Package auth supplies the authenticated user identity used by every
// ownership check: credential verification and JWT issuance/parsing.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service verifies credentials and issues JWTs.
type Service struct {
	uow    repository.UnitOfWork
	cfg    *config.Jwt
	logger *slog.Logger
}

// New creates a new auth Service.
func New(uow repository.UnitOfWork, cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{uow: uow, cfg: cfg, logger: logger.With("service", "auth")}
}

// Login verifies the identity (username or email) and password, returning
// the user on success and ErrUnauthorized otherwise.
func (s *Service) Login(ctx context.Context, identity, password string) (*domain.User, error) {
	var u *domain.User
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.GetByUsername(ctx, identity)
		if err != nil {
			u, err = users.GetByEmail(ctx, identity)
		}
		return err
	})
	if err != nil {
		s.logger.Warn("login failed: unknown identity", "identity", identity)
		return nil, domain.ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("login failed: bad credentials", "userID", u.ID)
		return nil, domain.ErrUnauthorized
	}
	s.logger.Info("login successful", "userID", u.ID)
	return u, nil
}

// GenerateToken issues a signed JWT for the user.
func (s *Service) GenerateToken(u *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  u.ID.String(),
		"username": u.Username,
		"email":    u.Email,
		"exp":      time.Now().Add(s.cfg.Expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// CurrentUserID extracts the authenticated user id from a parsed token.
func (s *Service) CurrentUserID(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: missing user_id claim", domain.ErrUnauthorized)
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed user_id claim", domain.ErrUnauthorized)
	}
	return userID, nil
}
