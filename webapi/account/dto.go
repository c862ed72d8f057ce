package account

import (
	"time"

	"github.com/amirasaad/banking/pkg/domain"
)

// OpenAccountRequest is the payload for POST /account.
type OpenAccountRequest struct {
	Type           string `json:"type" validate:"required,oneof=CHECKING SAVINGS CREDIT FIXED_DEPOSIT"`
	Currency       string `json:"currency" validate:"required,len=3,uppercase"`
	InitialBalance string `json:"initialBalance" validate:"omitempty"`
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	Type          string    `json:"type"`
	Balance       string    `json:"balance"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:            a.ID.String(),
		AccountNumber: a.AccountNumber,
		Type:          string(a.Type),
		Balance:       a.Balance.StringFixed(4),
		Currency:      a.Currency,
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}
