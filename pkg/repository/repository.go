// Package repository defines the data-access contracts the services depend
// on. Implementations live under infra/repository.
package repository

import (
	"context"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Page bounds a list query. Results are ordered by creation time descending.
type Page struct {
	Limit  int
	Offset int
}

// AccountRepository defines account data access.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error)
	// Balance returns the current balance without loading the full row.
	Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	// ApplyDelta atomically adds delta to the balance as a single conditional
	// UPDATE guarded by `balance + delta >= 0`. It returns
	// domain.ErrAccountNotFound if no row exists and
	// domain.ErrInsufficientFunds if the guard rejected the change.
	// Callers must never read-modify-write the balance themselves.
	ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
	// ExistsByIDAndUser is the ownership gate for every transaction entry point.
	ExistsByIDAndUser(ctx context.Context, id, userID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error
}

// TransactionRepository defines ledger data access.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, page Page) ([]*domain.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.Transaction, error)
	// ListDueRecurring returns recurring transactions with
	// next_payment_date <= now.
	ListDueRecurring(ctx context.Context, now time.Time) ([]*domain.Transaction, error)
}

// UserRepository defines user data access.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuditRepository persists transaction audit rows written by the audit
// event consumer.
type AuditRepository interface {
	Create(ctx context.Context, a *domain.TransactionAudit) error
	ListByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionAudit, error)
}
