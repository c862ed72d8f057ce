// Package scheduler re-invokes the transaction processor for recurring
// transactions that have come due, isolating each item's failure from the
// rest of the batch.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/notification"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/amirasaad/banking/pkg/service/transaction"
	"github.com/google/uuid"
)

// Processor is the slice of the transaction processor the scheduler needs.
type Processor interface {
	Process(ctx context.Context, req *transaction.Request, userID uuid.UUID) (*domain.Transaction, error)
}

// Scheduler periodically scans for due recurring transactions and processes
// each one through the normal validation/authorization path.
type Scheduler struct {
	uow       repository.UnitOfWork
	processor Processor
	emails    *notification.EmailSender
	logger    *slog.Logger
	interval  time.Duration
	clock     func() time.Time
	stop      chan struct{}
	done      chan struct{}
}

// Option configures optional scheduler behavior.
type Option func(*Scheduler)

// WithClock overrides the time source anchoring payment dates. Production
// uses time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// New creates a scheduler running at the given interval (daily in
// production).
func New(
	uow repository.UnitOfWork,
	processor Processor,
	emails *notification.EmailSender,
	interval time.Duration,
	logger *slog.Logger,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		uow:       uow,
		processor: processor,
		emails:    emails,
		logger:    logger.With("service", "scheduler"),
		interval:  interval,
		clock:     time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the scheduling loop. It returns immediately; call Stop to
// terminate the loop.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the scheduling loop and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

// RunOnce scans all due recurring transactions and processes each item.
// A failure on one item is recorded against that item and never aborts the
// remaining scan.
func (s *Scheduler) RunOnce(ctx context.Context) {
	now := s.clock()
	s.logger.Info("processing recurring payments", "at", now)

	var due []*domain.Transaction
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		due, err = ledger.ListDueRecurring(ctx, now)
		return err
	})
	if err != nil {
		s.logger.Error("failed to scan recurring transactions", "error", err)
		return
	}

	for _, item := range due {
		if err := s.processItem(ctx, item); err != nil {
			s.logger.Error("recurring payment failed",
				"transactionID", item.ID, "error", err)
		}
	}
}

// processItem runs one due recurring transaction end to end: synthesize a
// fresh request, push it through the processor, then persist the recurring
// row's new schedule state.
func (s *Scheduler) processItem(ctx context.Context, item *domain.Transaction) error {
	from, owner, err := s.resolveSource(ctx, item)
	if err != nil {
		s.recordFailure(ctx, item, nil, nil, err)
		return err
	}

	req, err := s.buildRequest(ctx, item, from)
	if err != nil {
		s.recordFailure(ctx, item, from, owner, err)
		return err
	}

	if _, err := s.processor.Process(ctx, req, owner.ID); err != nil {
		s.recordFailure(ctx, item, from, owner, err)
		return err
	}

	now := s.clock()
	next := item.Frequency.Next(now)
	uerr := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		item.Status = domain.TransactionStatusCompleted
		item.LastPaymentDate = &now
		item.NextPaymentDate = &next
		return ledger.Update(ctx, item)
	})
	if uerr != nil {
		s.logger.Error("failed to update recurring transaction",
			"transactionID", item.ID, "error", uerr)
		return uerr
	}

	s.sendSuccessNotification(item, from, owner)
	return nil
}

// recordFailure persists a FAILED state for the item: last_payment_date
// moves to now, next_payment_date stays unchanged so the item is retried on
// the next scan.
func (s *Scheduler) recordFailure(ctx context.Context, item *domain.Transaction, from *domain.Account, owner *domain.User, cause error) {
	now := s.clock()
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		ledger, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		item.Status = domain.TransactionStatusFailed
		item.LastPaymentDate = &now
		return ledger.Update(ctx, item)
	})
	if err != nil {
		s.logger.Error("failed to persist failed recurring transaction",
			"transactionID", item.ID, "error", err)
		return
	}
	if from != nil && owner != nil {
		s.sendFailureNotification(item, from, owner, cause)
	}
}

// resolveSource loads the recurring item's source account and its owner.
func (s *Scheduler) resolveSource(ctx context.Context, item *domain.Transaction) (from *domain.Account, owner *domain.User, err error) {
	if item.FromAccountID == nil {
		return nil, nil, fmt.Errorf("%w: recurring transaction has no source account", domain.ErrInvalidOperation)
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		from, err = accounts.Get(ctx, *item.FromAccountID)
		if err != nil {
			return err
		}
		users, err := uow.UserRepository()
		if err != nil {
			return err
		}
		owner, err = users.Get(ctx, from.UserID)
		return err
	})
	return
}

// buildRequest synthesizes a fresh transaction request from the recurring
// template, tagging it with the originating recurring id in metadata.
func (s *Scheduler) buildRequest(ctx context.Context, item *domain.Transaction, from *domain.Account) (*transaction.Request, error) {
	req := &transaction.Request{
		FromAccount: from.AccountNumber,
		Amount:      item.Amount,
		Currency:    item.Currency,
		Type:        item.Type,
		Description: "Recurring payment: " + item.Description,
		Metadata: domain.Metadata{
			"recurringTransactionId": item.ID.String(),
			"isRecurringPayment":     true,
		},
	}
	if item.ToAccountID != nil {
		err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
			accounts, err := uow.AccountRepository()
			if err != nil {
				return err
			}
			to, err := accounts.Get(ctx, *item.ToAccountID)
			if err != nil {
				return err
			}
			req.ToAccount = to.AccountNumber
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

func (s *Scheduler) sendSuccessNotification(item *domain.Transaction, from *domain.Account, owner *domain.User) {
	subject := fmt.Sprintf("Payment Processed - %s", item.Reference)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour recurring payment has been processed successfully.\n\n"+
			"Transaction Details:\n- Amount: %s %s\n- From Account: %s\n- Reference: %s\n",
		owner.FullName(), item.Amount.StringFixed(2), item.Currency,
		from.AccountNumber, item.Reference,
	)
	s.emails.Send(owner.Email, subject, body)
}

func (s *Scheduler) sendFailureNotification(item *domain.Transaction, from *domain.Account, owner *domain.User, cause error) {
	subject := fmt.Sprintf("Payment Failed - Transaction %s", item.Reference)
	reason := "unexpected error"
	if errors.Is(cause, domain.ErrInsufficientFunds) {
		reason = "insufficient funds"
	} else if cause != nil {
		reason = cause.Error()
	}
	body := fmt.Sprintf(
		"Hello %s,\n\nWe were unable to process your recurring payment.\n\n"+
			"Transaction Details:\n- Amount: %s %s\n- From Account: %s\n- Error: %s\n\n"+
			"Please contact customer support if you need assistance.\n",
		owner.FullName(), item.Amount.StringFixed(2), item.Currency,
		from.AccountNumber, reason,
	)
	s.emails.Send(owner.Email, subject, body)
}
