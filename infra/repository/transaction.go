package repository

import (
	"context"
	"time"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a ledger repository using the provided *gorm.DB.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	m := transactionToModel(tx)
	return translateError(r.db.WithContext(ctx).Create(&m).Error, domain.ErrTransactionNotFound)
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err, domain.ErrTransactionNotFound)
	}
	return transactionToDomain(&m), nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).First(&m, "reference = ?", reference).Error; err != nil {
		return nil, translateError(err, domain.ErrTransactionNotFound)
	}
	return transactionToDomain(&m), nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	m := transactionToModel(tx)
	res := r.db.WithContext(ctx).Model(&Transaction{}).
		Where("id = ?", tx.ID).Updates(map[string]any{
		"status":            m.Status,
		"description":       m.Description,
		"metadata":          m.Metadata,
		"next_payment_date": m.NextPaymentDate,
		"last_payment_date": m.LastPaymentDate,
	})
	if res.Error != nil {
		return translateError(res.Error, domain.ErrTransactionNotFound)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page repository.Page) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
		Order("created_at DESC").
		Limit(pageLimit(page)).Offset(page.Offset).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return transactionsToDomain(ms), nil
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, page repository.Page) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("from_account_id IN (?) OR to_account_id IN (?)",
			r.userAccountIDs(userID), r.userAccountIDs(userID)).
		Order("created_at DESC").
		Limit(pageLimit(page)).Offset(page.Offset).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return transactionsToDomain(ms), nil
}

// userAccountIDs builds a subquery selecting the ids of all accounts owned
// by the user; GORM inlines it into the IN clause.
func (r *transactionRepository) userAccountIDs(userID uuid.UUID) *gorm.DB {
	return r.db.Model(&Account{}).Select("id").Where("user_id = ?", userID)
}

func (r *transactionRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]*domain.Transaction, error) {
	var ms []Transaction
	err := r.db.WithContext(ctx).
		Where("recurring = ? AND next_payment_date IS NOT NULL AND next_payment_date <= ?", true, now).
		Order("next_payment_date ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return transactionsToDomain(ms), nil
}

func pageLimit(page repository.Page) int {
	if page.Limit <= 0 {
		return 20
	}
	return page.Limit
}

func transactionsToDomain(ms []Transaction) []*domain.Transaction {
	out := make([]*domain.Transaction, 0, len(ms))
	for i := range ms {
		out = append(out, transactionToDomain(&ms[i]))
	}
	return out
}

func transactionToModel(tx *domain.Transaction) Transaction {
	return Transaction{
		ID:              tx.ID,
		Reference:       tx.Reference,
		FromAccountID:   tx.FromAccountID,
		ToAccountID:     tx.ToAccountID,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Type:            string(tx.Type),
		Status:          string(tx.Status),
		Description:     tx.Description,
		Metadata:        JSONMap(tx.Metadata),
		Recurring:       tx.Recurring,
		Frequency:       string(tx.Frequency),
		NextPaymentDate: tx.NextPaymentDate,
		LastPaymentDate: tx.LastPaymentDate,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

func transactionToDomain(m *Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:              m.ID,
		Reference:       m.Reference,
		FromAccountID:   m.FromAccountID,
		ToAccountID:     m.ToAccountID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Type:            domain.TransactionType(m.Type),
		Status:          domain.TransactionStatus(m.Status),
		Description:     m.Description,
		Metadata:        domain.Metadata(m.Metadata),
		Recurring:       m.Recurring,
		Frequency:       domain.Frequency(m.Frequency),
		NextPaymentDate: m.NextPaymentDate,
		LastPaymentDate: m.LastPaymentDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
