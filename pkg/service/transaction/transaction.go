// Package transaction implements the transaction processor: validation,
// authorization, and atomic execution of deposits, withdrawals, and
// transfers, updating the ledger and the account balances in one unit of
// work and emitting an outcome event per processed transaction.
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/domain/events"
	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request describes one money movement to process. Account fields carry
// account numbers; which ones are required depends on Type.
type Request struct {
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Currency    string
	Type        domain.TransactionType
	Description string
	Metadata    domain.Metadata
}

// Service is the transaction processor.
type Service struct {
	uow    repository.UnitOfWork
	bus    eventbus.Bus
	logger *slog.Logger

	ops map[domain.TransactionType]func(ctx context.Context, req *Request, userID uuid.UUID) (*domain.Transaction, error)
}

// New creates a new transaction processor.
func New(uow repository.UnitOfWork, bus eventbus.Bus, logger *slog.Logger) *Service {
	s := &Service{
		uow:    uow,
		bus:    bus,
		logger: logger.With("service", "transaction"),
	}
	// Fixed dispatch table over the supported operation kinds.
	s.ops = map[domain.TransactionType]func(context.Context, *Request, uuid.UUID) (*domain.Transaction, error){
		domain.TransactionTypeDeposit:    s.Deposit,
		domain.TransactionTypeWithdrawal: s.Withdraw,
		domain.TransactionTypeTransfer:   s.Transfer,
	}
	return s
}

// Process routes the request to the operation declared by its type.
func (s *Service) Process(ctx context.Context, req *Request, userID uuid.UUID) (*domain.Transaction, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: transaction request cannot be nil", domain.ErrInvalidOperation)
	}
	op, ok := s.ops[req.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported transaction type: %s", domain.ErrInvalidOperation, req.Type)
	}
	return op(ctx, req, userID)
}

// Deposit credits the destination account. There is deliberately no
// ownership check on the destination: any authenticated caller may credit
// any active account number (third-party deposits, e.g. payroll).
func (s *Service) Deposit(ctx context.Context, req *Request, userID uuid.UUID) (*domain.Transaction, error) {
	log := s.logger.With("type", domain.TransactionTypeDeposit, "userID", userID)
	if err := validateRequest(req, false, true); err != nil {
		return nil, err
	}

	var tx *domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		to, err := accounts.GetByNumber(ctx, req.ToAccount)
		if err != nil {
			return err
		}
		if err := ensureActive(to); err != nil {
			return err
		}
		tx, err = s.commit(ctx, ledger, nil, &to.ID, req)
		if err != nil {
			return err
		}
		return accounts.ApplyDelta(ctx, to.ID, req.Amount)
	})
	if err != nil {
		log.Error("deposit failed", "error", err)
		return nil, err
	}
	log.Info("deposit processed", "transactionID", tx.ID)
	s.publishOutcome(ctx, req, tx)
	return tx, nil
}

// Withdraw debits the caller's account after the ownership and sufficiency
// checks.
func (s *Service) Withdraw(ctx context.Context, req *Request, userID uuid.UUID) (*domain.Transaction, error) {
	log := s.logger.With("type", domain.TransactionTypeWithdrawal, "userID", userID)
	if err := validateRequest(req, true, false); err != nil {
		return nil, err
	}

	var tx *domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		from, err := accounts.GetByNumber(ctx, req.FromAccount)
		if err != nil {
			return err
		}
		if err := ensureActive(from); err != nil {
			return err
		}
		if from.UserID != userID {
			return fmt.Errorf("%w: you don't have permission to withdraw from this account", domain.ErrInvalidOperation)
		}
		if from.Balance.LessThan(req.Amount) {
			return domain.ErrInsufficientFunds
		}
		tx, err = s.commit(ctx, ledger, &from.ID, nil, req)
		if err != nil {
			return err
		}
		// The pre-check above can race with concurrent debits; the
		// conditional delta below is the actual correctness boundary.
		return accounts.ApplyDelta(ctx, from.ID, req.Amount.Neg())
	})
	if err != nil {
		log.Error("withdrawal failed", "error", err)
		return nil, err
	}
	log.Info("withdrawal processed", "transactionID", tx.ID)
	s.publishOutcome(ctx, req, tx)
	return tx, nil
}

// Transfer moves funds between two accounts. The ledger row commits before
// the balances change and all three writes share one unit of work: a failure
// on any step rolls back the row and both deltas.
func (s *Service) Transfer(ctx context.Context, req *Request, userID uuid.UUID) (*domain.Transaction, error) {
	log := s.logger.With("type", domain.TransactionTypeTransfer, "userID", userID)
	if err := validateRequest(req, true, true); err != nil {
		return nil, err
	}

	var tx *domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		from, err := accounts.GetByNumber(ctx, req.FromAccount)
		if err != nil {
			return err
		}
		to, err := accounts.GetByNumber(ctx, req.ToAccount)
		if err != nil {
			return err
		}
		if err := ensureActive(from); err != nil {
			return err
		}
		if err := ensureActive(to); err != nil {
			return err
		}
		if from.UserID != userID {
			return fmt.Errorf("%w: you don't have permission to transfer from this account", domain.ErrInvalidOperation)
		}
		if from.Balance.LessThan(req.Amount) {
			return domain.ErrInsufficientFunds
		}
		tx, err = s.commit(ctx, ledger, &from.ID, &to.ID, req)
		if err != nil {
			return err
		}
		if err := accounts.ApplyDelta(ctx, from.ID, req.Amount.Neg()); err != nil {
			return err
		}
		return accounts.ApplyDelta(ctx, to.ID, req.Amount)
	})
	if err != nil {
		log.Error("transfer failed", "error", err)
		return nil, err
	}
	log.Info("transfer processed", "transactionID", tx.ID)
	s.publishOutcome(ctx, req, tx)
	return tx, nil
}

// commit writes the PENDING ledger row and immediately marks it COMPLETED.
// Both writes belong to the caller's unit of work.
func (s *Service) commit(
	ctx context.Context,
	ledger repository.TransactionRepository,
	from, to *uuid.UUID,
	req *Request,
) (*domain.Transaction, error) {
	tx := domain.NewTransaction(from, to, req.Amount, req.Currency, req.Type, req.Description, req.Metadata)
	if err := ledger.Create(ctx, tx); err != nil {
		return nil, err
	}
	tx.Status = domain.TransactionStatusCompleted
	if err := ledger.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// publishOutcome emits exactly one outcome event for the committed
// transaction. A publish failure is logged and never unwinds the financial
// mutation.
func (s *Service) publishOutcome(ctx context.Context, req *Request, tx *domain.Transaction) {
	event := &events.TransactionEvent{
		TransactionID: tx.ID.String(),
		FromAccount:   req.FromAccount,
		ToAccount:     req.ToAccount,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Type:          string(tx.Type),
		Status:        string(tx.Status),
		Description:   "Transaction processed successfully",
		Timestamp:     time.Now(),
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish transaction event",
			"transactionID", tx.ID, "error", err)
	}
}

// ScheduleRecurring registers a recurring payment template. The row stays
// PENDING until the scheduler picks it up at next payment date; no money
// moves here.
func (s *Service) ScheduleRecurring(
	ctx context.Context,
	req *Request,
	frequency domain.Frequency,
	firstPayment time.Time,
	userID uuid.UUID,
) (*domain.Transaction, error) {
	if err := validateRequest(req, true, req.Type.RequiresToAccount()); err != nil {
		return nil, err
	}
	if frequency.Next(firstPayment).Equal(firstPayment) {
		return nil, fmt.Errorf("%w: unsupported frequency: %s", domain.ErrInvalidOperation, frequency)
	}

	var tx *domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		from, err := accounts.GetByNumber(ctx, req.FromAccount)
		if err != nil {
			return err
		}
		if err := ensureActive(from); err != nil {
			return err
		}
		if from.UserID != userID {
			return fmt.Errorf("%w: you don't have permission to schedule payments from this account", domain.ErrInvalidOperation)
		}
		var to *uuid.UUID
		if req.ToAccount != "" {
			dest, err := accounts.GetByNumber(ctx, req.ToAccount)
			if err != nil {
				return err
			}
			if err := ensureActive(dest); err != nil {
				return err
			}
			to = &dest.ID
		}
		tx = domain.NewTransaction(&from.ID, to, req.Amount, req.Currency, req.Type, req.Description, req.Metadata)
		tx.Recurring = true
		tx.Frequency = frequency
		tx.NextPaymentDate = &firstPayment
		return ledger.Create(ctx, tx)
	})
	if err != nil {
		s.logger.Error("failed to schedule recurring payment", "userID", userID, "error", err)
		return nil, err
	}
	s.logger.Info("recurring payment scheduled",
		"transactionID", tx.ID, "frequency", frequency, "firstPayment", firstPayment)
	return tx, nil
}

// GetByReference returns the transaction with the given reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (tx *domain.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		tx, err = ledger.GetByReference(ctx, reference)
		return err
	})
	return
}

// ListByUser lists all transactions touching any of the user's accounts,
// newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, page repository.Page) (txs []*domain.Transaction, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		txs, err = ledger.ListByUser(ctx, userID, page)
		return err
	})
	return
}

// ensureActive rejects any movement touching a non-ACTIVE account. A closed
// account holds a zero balance forever; neither leg of any operation may
// reference it.
func ensureActive(a *domain.Account) error {
	if a.Status != domain.AccountStatusActive {
		return fmt.Errorf("%w: account %s is %s and cannot accept transactions",
			domain.ErrInvalidOperation, a.AccountNumber, a.Status)
	}
	return nil
}

// validateRequest enforces the validation order shared by all operations:
// request present, required account fields for the type, positive amount,
// currency, type. Any failure surfaces as ErrInvalidOperation with zero
// side effects.
func validateRequest(req *Request, requireFrom, requireTo bool) error {
	if req == nil {
		return fmt.Errorf("%w: transaction request cannot be nil", domain.ErrInvalidOperation)
	}
	if requireFrom && req.FromAccount == "" {
		return fmt.Errorf("%w: source account number is required for this transaction type", domain.ErrInvalidOperation)
	}
	if requireTo && req.ToAccount == "" {
		return fmt.Errorf("%w: destination account number is required for this transaction type", domain.ErrInvalidOperation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: transaction amount must be greater than zero", domain.ErrInvalidOperation)
	}
	if req.Currency == "" {
		return fmt.Errorf("%w: currency is required", domain.ErrInvalidOperation)
	}
	if req.Type == "" {
		return fmt.Errorf("%w: transaction type is required", domain.ErrInvalidOperation)
	}
	return nil
}
