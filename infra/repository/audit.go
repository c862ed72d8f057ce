package repository

import (
	"context"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates an audit repository using the provided *gorm.DB.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, a *domain.TransactionAudit) error {
	m := TransactionAudit{
		TransactionID: a.TransactionID,
		EventType:     a.EventType,
		Details:       a.Details,
		CreatedAt:     a.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	a.ID = m.ID
	return nil
}

func (r *auditRepository) ListByTransaction(ctx context.Context, transactionID string) ([]*domain.TransactionAudit, error) {
	var ms []TransactionAudit
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.TransactionAudit, 0, len(ms))
	for i := range ms {
		out = append(out, &domain.TransactionAudit{
			ID:            ms[i].ID,
			TransactionID: ms[i].TransactionID,
			EventType:     ms[i].EventType,
			Details:       ms[i].Details,
			CreatedAt:     ms[i].CreatedAt,
		})
	}
	return out, nil
}
