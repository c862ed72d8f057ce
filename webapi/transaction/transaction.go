// Package transaction exposes the money-movement routes: process a
// transaction, schedule a recurring payment, and read ledger history.
package transaction

import (
	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	authsvc "github.com/amirasaad/banking/pkg/service/auth"
	txsvc "github.com/amirasaad/banking/pkg/service/transaction"
	"github.com/amirasaad/banking/webapi/common"
	"github.com/amirasaad/banking/webapi/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Routes registers the transaction endpoints, all JWT-protected.
func Routes(app *fiber.App, txSvc *txsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	jwt := middleware.JwtProtected(cfg.Jwt)
	app.Post("/transaction", jwt, Process(txSvc, authSvc))
	app.Post("/transaction/recurring", jwt, ScheduleRecurring(txSvc, authSvc))
	app.Get("/transaction/:reference", jwt, GetByReference(txSvc, authSvc))
	app.Get("/transactions", jwt, List(txSvc, authSvc))
}

// Process returns the handler executing a deposit, withdrawal, or transfer.
func Process(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ProcessRequest](c)
		if input == nil {
			return err
		}
		req, err := toServiceRequest(c, input)
		if req == nil {
			return err
		}
		tx, err := txSvc.Process(c.Context(), req, userID)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to process transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated,
			"Transaction processed", ToResponse(tx))
	}
}

// ScheduleRecurring returns the handler registering a recurring payment.
func ScheduleRecurring(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[ScheduleRequest](c)
		if input == nil {
			return err
		}
		req, err := toServiceRequest(c, &input.ProcessRequest)
		if req == nil {
			return err
		}
		tx, err := txSvc.ScheduleRecurring(c.Context(), req,
			domain.Frequency(input.Frequency), input.FirstPayment, userID)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to schedule recurring payment", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated,
			"Recurring payment scheduled", ToResponse(tx))
	}
}

// GetByReference returns the handler reading one ledger entry by reference.
func GetByReference(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := common.CurrentUserID(c, authSvc); err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		tx, err := txSvc.GetByReference(c.Context(), c.Params("reference"))
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to fetch transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK,
			"Transaction", ToResponse(tx))
	}
}

// List returns the handler paging through the current user's ledger history.
func List(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		limit, offset := common.ParsePage(c)
		txs, err := txSvc.ListByUser(c.Context(), userID,
			repository.Page{Limit: limit, Offset: offset})
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to list transactions", err)
		}
		out := make([]TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			out = append(out, ToResponse(tx))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", out)
	}
}

// toServiceRequest maps the HTTP payload onto a processor request. A nil
// return means the error response has already been written.
func toServiceRequest(c *fiber.Ctx, input *ProcessRequest) (*txsvc.Request, error) {
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return nil, common.ErrorResponseJSON(c, fiber.StatusBadRequest,
			"Invalid request", "amount must be a decimal number")
	}
	return &txsvc.Request{
		FromAccount: input.FromAccount,
		ToAccount:   input.ToAccount,
		Amount:      amount,
		Currency:    input.Currency,
		Type:        domain.TransactionType(input.Type),
		Description: input.Description,
		Metadata:    domain.Metadata(input.Metadata),
	}, nil
}
