// Package fixtures provides in-memory repository fakes and a unit-of-work
// implementation with copy-on-begin rollback, for service-level tests that
// should not touch a database.
package fixtures

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UoW is an in-memory repository.UnitOfWork. Do snapshots the account and
// ledger state on entry and restores it when fn fails, so rollback-sensitive
// assertions (no COMPLETED row after a failed transfer) hold like they would
// against a real transaction. Nested Do calls join the outer unit.
type UoW struct {
	Accounts *AccountStore
	Ledger   *LedgerStore
	Users    *UserStore
	Audits   *AuditStore

	// DoErr, when set, makes every Do fail before running fn.
	DoErr error

	mu   sync.Mutex
	inTx bool
}

// NewUoW builds a fully wired in-memory unit of work.
func NewUoW() *UoW {
	accounts := NewAccountStore()
	return &UoW{
		Accounts: accounts,
		Ledger:   NewLedgerStore(accounts),
		Users:    NewUserStore(),
		Audits:   NewAuditStore(),
	}
}

// Do runs fn, restoring pre-call account and ledger state on error.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.DoErr != nil {
		return u.DoErr
	}
	u.mu.Lock()
	if u.inTx {
		u.mu.Unlock()
		return fn(u)
	}
	u.inTx = true
	accounts := u.Accounts.snapshot()
	ledger := u.Ledger.snapshot()
	u.mu.Unlock()

	err := fn(u)

	u.mu.Lock()
	u.inTx = false
	u.mu.Unlock()
	if err != nil {
		u.Accounts.restore(accounts)
		u.Ledger.restore(ledger)
	}
	return err
}

// GetRepository returns the fake bound to the requested interface type.
func (u *UoW) GetRepository(repoType reflect.Type) (any, error) {
	switch repoType {
	case reflect.TypeOf((*repository.AccountRepository)(nil)).Elem():
		return u.Accounts, nil
	case reflect.TypeOf((*repository.TransactionRepository)(nil)).Elem():
		return u.Ledger, nil
	case reflect.TypeOf((*repository.UserRepository)(nil)).Elem():
		return u.Users, nil
	case reflect.TypeOf((*repository.AuditRepository)(nil)).Elem():
		return u.Audits, nil
	}
	return nil, fmt.Errorf("no repository registered for type %v", repoType)
}

// AccountRepository returns the account fake.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) { return u.Accounts, nil }

// TransactionRepository returns the ledger fake.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	return u.Ledger, nil
}

// UserRepository returns the user fake.
func (u *UoW) UserRepository() (repository.UserRepository, error) { return u.Users, nil }

// AuditRepository returns the audit fake.
func (u *UoW) AuditRepository() (repository.AuditRepository, error) { return u.Audits, nil }

var _ repository.UnitOfWork = (*UoW)(nil)

// AccountStore is a mutex-guarded in-memory repository.AccountRepository.
type AccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account
	byNumber map[string]uuid.UUID
}

// NewAccountStore creates an empty account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[uuid.UUID]*domain.Account),
		byNumber: make(map[string]uuid.UUID),
	}
}

// Create stores a copy of the account.
func (s *AccountStore) Create(ctx context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNumber[a.AccountNumber]; exists {
		return fmt.Errorf("%w: account number %s", domain.ErrIntegrityConflict, a.AccountNumber)
	}
	cp := *a
	s.accounts[a.ID] = &cp
	s.byNumber[a.AccountNumber] = a.ID
	return nil
}

// Get returns a copy of the account or ErrAccountNotFound.
func (s *AccountStore) Get(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

// GetByNumber returns a copy of the account or ErrAccountNotFound.
func (s *AccountStore) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byNumber[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *s.accounts[id]
	return &cp, nil
}

// ListByUser returns copies of the user's accounts.
func (s *AccountStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Balance returns the current balance or ErrAccountNotFound.
func (s *AccountStore) Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}
	return a.Balance, nil
}

// ApplyDelta mirrors the storage-level conditional update: the guard and the
// write happen under one lock acquisition.
func (s *AccountStore) ApplyDelta(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientFunds
	}
	a.Balance = next
	a.UpdatedAt = time.Now()
	return nil
}

// ExistsByIDAndUser reports whether the account exists and is owned by userID.
func (s *AccountStore) ExistsByIDAndUser(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return ok && a.UserID == userID, nil
}

// UpdateStatus transitions the account's lifecycle state.
func (s *AccountStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (s *AccountStore) snapshot() map[uuid.UUID]domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[uuid.UUID]domain.Account, len(s.accounts))
	for id, a := range s.accounts {
		snap[id] = *a
	}
	return snap
}

func (s *AccountStore) restore(snap map[uuid.UUID]domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[uuid.UUID]*domain.Account, len(snap))
	s.byNumber = make(map[string]uuid.UUID, len(snap))
	for id, a := range snap {
		cp := a
		s.accounts[id] = &cp
		s.byNumber[a.AccountNumber] = id
	}
}

var _ repository.AccountRepository = (*AccountStore)(nil)

// LedgerStore is a mutex-guarded in-memory repository.TransactionRepository.
// It resolves user-scoped listings through the account store it was built
// with.
type LedgerStore struct {
	mu       sync.Mutex
	accounts *AccountStore
	txs      map[uuid.UUID]*domain.Transaction
	byRef    map[string]uuid.UUID
	order    []uuid.UUID
}

// NewLedgerStore creates an empty ledger backed by the given account store.
func NewLedgerStore(accounts *AccountStore) *LedgerStore {
	return &LedgerStore{
		accounts: accounts,
		txs:      make(map[uuid.UUID]*domain.Transaction),
		byRef:    make(map[string]uuid.UUID),
	}
}

// Create stores a copy of the transaction, enforcing reference uniqueness.
func (s *LedgerStore) Create(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byRef[tx.Reference]; exists {
		return fmt.Errorf("%w: reference %s", domain.ErrIntegrityConflict, tx.Reference)
	}
	cp := copyTransaction(tx)
	s.txs[tx.ID] = cp
	s.byRef[tx.Reference] = tx.ID
	s.order = append(s.order, tx.ID)
	return nil
}

// Get returns a copy of the transaction or ErrTransactionNotFound.
func (s *LedgerStore) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(tx), nil
}

// GetByReference returns a copy of the transaction or ErrTransactionNotFound.
func (s *LedgerStore) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byRef[reference]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(s.txs[id]), nil
}

// Update overwrites the stored row's mutable fields.
func (s *LedgerStore) Update(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[tx.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	cp := copyTransaction(tx)
	cp.UpdatedAt = time.Now()
	s.txs[tx.ID] = cp
	return nil
}

// ListByAccount returns the account's transactions, newest first.
func (s *LedgerStore) ListByAccount(ctx context.Context, accountID uuid.UUID, page repository.Page) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := func(tx *domain.Transaction) bool {
		return (tx.FromAccountID != nil && *tx.FromAccountID == accountID) ||
			(tx.ToAccountID != nil && *tx.ToAccountID == accountID)
	}
	return s.list(match, page), nil
}

// ListByUser returns transactions touching any account owned by userID,
// newest first.
func (s *LedgerStore) ListByUser(ctx context.Context, userID uuid.UUID, page repository.Page) ([]*domain.Transaction, error) {
	owned := make(map[uuid.UUID]bool)
	s.accounts.mu.Lock()
	for id, a := range s.accounts.accounts {
		if a.UserID == userID {
			owned[id] = true
		}
	}
	s.accounts.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	match := func(tx *domain.Transaction) bool {
		return (tx.FromAccountID != nil && owned[*tx.FromAccountID]) ||
			(tx.ToAccountID != nil && owned[*tx.ToAccountID])
	}
	return s.list(match, page), nil
}

// ListDueRecurring returns recurring rows with next_payment_date <= now.
func (s *LedgerStore) ListDueRecurring(ctx context.Context, now time.Time) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, id := range s.order {
		tx := s.txs[id]
		if tx.Recurring && tx.NextPaymentDate != nil && !tx.NextPaymentDate.After(now) {
			out = append(out, copyTransaction(tx))
		}
	}
	return out, nil
}

// list walks insertion order in reverse, which matches created_at descending.
func (s *LedgerStore) list(match func(*domain.Transaction) bool, page repository.Page) []*domain.Transaction {
	var all []*domain.Transaction
	for i := len(s.order) - 1; i >= 0; i-- {
		tx := s.txs[s.order[i]]
		if match(tx) {
			all = append(all, copyTransaction(tx))
		}
	}
	if page.Offset >= len(all) {
		return nil
	}
	all = all[page.Offset:]
	if page.Limit > 0 && page.Limit < len(all) {
		all = all[:page.Limit]
	}
	return all
}

func (s *LedgerStore) snapshot() map[uuid.UUID]*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := make(map[uuid.UUID]*domain.Transaction, len(s.txs))
	for id, tx := range s.txs {
		snap[id] = copyTransaction(tx)
	}
	return snap
}

func (s *LedgerStore) restore(snap map[uuid.UUID]*domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = make(map[uuid.UUID]*domain.Transaction, len(snap))
	s.byRef = make(map[string]uuid.UUID, len(snap))
	var order []uuid.UUID
	for _, id := range s.order {
		if tx, ok := snap[id]; ok {
			s.txs[id] = copyTransaction(tx)
			s.byRef[tx.Reference] = id
			order = append(order, id)
		}
	}
	s.order = order
}

func copyTransaction(tx *domain.Transaction) *domain.Transaction {
	cp := *tx
	if tx.FromAccountID != nil {
		v := *tx.FromAccountID
		cp.FromAccountID = &v
	}
	if tx.ToAccountID != nil {
		v := *tx.ToAccountID
		cp.ToAccountID = &v
	}
	if tx.NextPaymentDate != nil {
		v := *tx.NextPaymentDate
		cp.NextPaymentDate = &v
	}
	if tx.LastPaymentDate != nil {
		v := *tx.LastPaymentDate
		cp.LastPaymentDate = &v
	}
	if tx.Metadata != nil {
		cp.Metadata = make(domain.Metadata, len(tx.Metadata))
		for k, v := range tx.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

var _ repository.TransactionRepository = (*LedgerStore)(nil)

// UserStore is a mutex-guarded in-memory repository.UserRepository.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

// NewUserStore creates an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*domain.User)}
}

// Create stores a copy of the user, enforcing username/email uniqueness.
func (s *UserStore) Create(ctx context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("%w: username or email already taken", domain.ErrIntegrityConflict)
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

// Get returns a copy of the user or ErrUserNotFound.
func (s *UserStore) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetByUsername returns a copy of the user or ErrUserNotFound.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail returns a copy of the user or ErrUserNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

var _ repository.UserRepository = (*UserStore)(nil)

// AuditStore is a mutex-guarded in-memory repository.AuditRepository.
type AuditStore struct {
	mu   sync.Mutex
	rows []*domain.TransactionAudit
}

// NewAuditStore creates an empty audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Create appends a copy of the audit row, assigning its id.
func (s *AuditStore) Create(ctx context.Context, a *domain.TransactionAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	cp.ID = int64(len(s.rows) + 1)
	s.rows = append(s.rows, &cp)
	a.ID = cp.ID
	return nil
}

// ListByTransaction returns copies of the rows for the given transaction id.
func (s *AuditStore) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionAudit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.TransactionAudit
	for _, row := range s.rows {
		if row.TransactionID == transactionID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

// All returns copies of every audit row, in insertion order.
func (s *AuditStore) All() []*domain.TransactionAudit {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.TransactionAudit, 0, len(s.rows))
	for _, row := range s.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out
}

var _ repository.AuditRepository = (*AuditStore)(nil)
