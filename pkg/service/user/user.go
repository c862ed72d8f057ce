// Package user provides registration and lookup for the users that own
// accounts.
package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service provides business logic for user operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new user Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger.With("service", "user")}
}

// Register creates a new user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, email, password, firstName, lastName string) (u *domain.User, err error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	u = &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		return users.Create(ctx, u)
	})
	if err != nil {
		s.logger.Error("failed to register user", "username", username, "error", err)
		return nil, err
	}
	s.logger.Info("user registered", "userID", u.ID)
	return u, nil
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (u *domain.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err = users.Get(ctx, id)
		return err
	})
	return
}

// EmailForAccountNumber resolves the email of the user owning the account
// with the given number. The notification consumer uses it to pick a
// recipient.
func (s *Service) EmailForAccountNumber(ctx context.Context, accountNumber string) (email string, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.GetByNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		u, err := users.Get(ctx, a.UserID)
		if err != nil {
			return err
		}
		email = u.Email
		return nil
	})
	return
}
