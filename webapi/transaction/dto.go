package transaction

import (
	"time"

	"github.com/amirasaad/banking/pkg/domain"
)

// ProcessRequest is the payload for POST /transaction.
type ProcessRequest struct {
	FromAccount string         `json:"fromAccount" validate:"omitempty"`
	ToAccount   string         `json:"toAccount" validate:"omitempty"`
	Amount      string         `json:"amount" validate:"required"`
	Currency    string         `json:"currency" validate:"required,len=3,uppercase"`
	Type        string         `json:"type" validate:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER PAYMENT REFUND"`
	Description string         `json:"description" validate:"omitempty,max=255"`
	Metadata    map[string]any `json:"metadata" validate:"omitempty"`
}

// ScheduleRequest is the payload for POST /transaction/recurring.
type ScheduleRequest struct {
	ProcessRequest
	Frequency    string    `json:"frequency" validate:"required,oneof=DAILY WEEKLY MONTHLY QUARTERLY YEARLY"`
	FirstPayment time.Time `json:"firstPayment" validate:"required"`
}

// TransactionResponse is the public view of a ledger entry.
type TransactionResponse struct {
	ID              string         `json:"id"`
	Reference       string         `json:"reference"`
	FromAccountID   *string        `json:"fromAccountId,omitempty"`
	ToAccountID     *string        `json:"toAccountId,omitempty"`
	Amount          string         `json:"amount"`
	Currency        string         `json:"currency"`
	Type            string         `json:"type"`
	Status          string         `json:"status"`
	Description     string         `json:"description,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	Recurring       bool           `json:"recurring,omitempty"`
	Frequency       string         `json:"frequency,omitempty"`
	NextPaymentDate *time.Time     `json:"nextPaymentDate,omitempty"`
	LastPaymentDate *time.Time     `json:"lastPaymentDate,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func ToResponse(tx *domain.Transaction) TransactionResponse {
	out := TransactionResponse{
		ID:              tx.ID.String(),
		Reference:       tx.Reference,
		Amount:          tx.Amount.StringFixed(4),
		Currency:        tx.Currency,
		Type:            string(tx.Type),
		Status:          string(tx.Status),
		Description:     tx.Description,
		Metadata:        tx.Metadata,
		Recurring:       tx.Recurring,
		Frequency:       string(tx.Frequency),
		NextPaymentDate: tx.NextPaymentDate,
		LastPaymentDate: tx.LastPaymentDate,
		CreatedAt:       tx.CreatedAt,
	}
	if tx.FromAccountID != nil {
		id := tx.FromAccountID.String()
		out.FromAccountID = &id
	}
	if tx.ToAccountID != nil {
		id := tx.ToAccountID.String()
		out.ToAccountID = &id
	}
	return out
}
