// Package account provides the account store: opening accounts, closing
// them, balance inquiries, and the ownership gate used by every transaction
// entry point. Balance mutation itself goes through the repository's atomic
// delta primitive inside the transaction processor's unit of work.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides business logic for account operations.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a new account Service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger.With("service", "account")}
}

// Open creates a new account for the given user. The account id is reserved
// up front so the account number can be derived before the single insert.
func (s *Service) Open(
	ctx context.Context,
	userID uuid.UUID,
	accountType domain.AccountType,
	currency string,
	initialBalance decimal.Decimal,
) (a *domain.Account, err error) {
	log := s.logger.With("userID", userID, "type", accountType)
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		if _, err := users.Get(ctx, userID); err != nil {
			return err
		}
		a, err = domain.NewAccount(userID, accountType, currency, initialBalance)
		if err != nil {
			return err
		}
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return accounts.Create(ctx, a)
	})
	if err != nil {
		a = nil
		log.Error("failed to open account", "error", err)
		return
	}
	log.Info("account opened", "accountNumber", a.AccountNumber)
	return
}

// Get returns the account by id.
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (a *domain.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = accounts.Get(ctx, accountID)
		return err
	})
	return
}

// GetByNumber returns the account by its human-readable number.
func (s *Service) GetByNumber(ctx context.Context, number string) (a *domain.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err = accounts.GetByNumber(ctx, number)
		return err
	})
	return
}

// ListByUser returns all accounts owned by the user.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) (as []*domain.Account, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		as, err = accounts.ListByUser(ctx, userID)
		return err
	})
	return
}

// Balance returns the current balance of the account.
func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (balance decimal.Decimal, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		balance, err = accounts.Balance(ctx, accountID)
		return err
	})
	return
}

// IsOwner reports whether userID owns accountID. It is the authorization
// gate for every transaction entry point.
func (s *Service) IsOwner(ctx context.Context, accountID, userID uuid.UUID) (ok bool, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ok, err = accounts.ExistsByIDAndUser(ctx, accountID, userID)
		return err
	})
	return
}

// Close transitions the account ACTIVE -> CLOSED. It fails with
// ErrInvalidOperation unless the caller owns the account and the balance is
// exactly zero. CLOSED is terminal.
func (s *Service) Close(ctx context.Context, accountID, userID uuid.UUID) error {
	log := s.logger.With("accountID", accountID, "userID", userID)
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		a, err := accounts.Get(ctx, accountID)
		if err != nil {
			return err
		}
		if a.UserID != userID {
			return fmt.Errorf("%w: you don't have permission to close this account", domain.ErrInvalidOperation)
		}
		if !a.CanClose() {
			return fmt.Errorf("%w: cannot close account with non-zero balance", domain.ErrInvalidOperation)
		}
		return accounts.UpdateStatus(ctx, accountID, domain.AccountStatusClosed)
	})
	if err != nil {
		log.Error("failed to close account", "error", err)
		return err
	}
	log.Info("account closed")
	return nil
}

// Transactions lists the account's ledger entries, newest first, after
// verifying the caller owns the account.
func (s *Service) Transactions(
	ctx context.Context,
	accountID, userID uuid.UUID,
	page repository.Page,
) (txs []*domain.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		owner, err := accounts.ExistsByIDAndUser(ctx, accountID, userID)
		if err != nil {
			return err
		}
		if !owner {
			return fmt.Errorf("%w: you don't have permission to view transactions for this account", domain.ErrInvalidOperation)
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		txs, err = ledger.ListByAccount(ctx, accountID, page)
		return err
	})
	return
}
