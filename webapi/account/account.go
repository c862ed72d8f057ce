// Package account exposes the account routes: open, list, balance, close,
// and per-account transaction history.
package account

import (
	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/repository"
	accountsvc "github.com/amirasaad/banking/pkg/service/account"
	authsvc "github.com/amirasaad/banking/pkg/service/auth"
	"github.com/amirasaad/banking/webapi/common"
	"github.com/amirasaad/banking/webapi/middleware"
	transactionweb "github.com/amirasaad/banking/webapi/transaction"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Routes registers the account endpoints, all JWT-protected.
func Routes(app *fiber.App, accountSvc *accountsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	jwt := middleware.JwtProtected(cfg.Jwt)
	app.Post("/account", jwt, Open(accountSvc, authSvc))
	app.Get("/account", jwt, List(accountSvc, authSvc))
	app.Get("/account/:id/balance", jwt, GetBalance(accountSvc, authSvc))
	app.Post("/account/:id/close", jwt, Close(accountSvc, authSvc))
	app.Get("/account/:id/transactions", jwt, GetTransactions(accountSvc, authSvc))
}

// Open returns the handler creating a new account for the current user.
func Open(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		input, err := common.BindAndValidate[OpenAccountRequest](c)
		if input == nil {
			return err
		}
		initial := decimal.Zero
		if input.InitialBalance != "" {
			initial, err = decimal.NewFromString(input.InitialBalance)
			if err != nil {
				return common.ErrorResponseJSON(c, fiber.StatusBadRequest,
					"Invalid request", "initialBalance must be a decimal number")
			}
		}
		a, err := accountSvc.Open(c.Context(), userID,
			domain.AccountType(input.Type), input.Currency, initial)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to open account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", toAccountResponse(a))
	}
}

// List returns the handler listing the current user's accounts.
func List(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		accounts, err := accountSvc.ListByUser(c.Context(), userID)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to list accounts", err)
		}
		out := make([]AccountResponse, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, toAccountResponse(a))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts", out)
	}
}

// GetBalance returns the handler reading one account's balance.
func GetBalance(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		accountID, err := parseAccountID(c)
		if err != nil {
			return err
		}
		owner, err := accountSvc.IsOwner(c.Context(), accountID, userID)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to fetch balance", err)
		}
		if !owner {
			return common.ErrorResponseJSON(c, fiber.StatusForbidden,
				"Forbidden", "you don't have permission to view this account")
		}
		balance, err := accountSvc.Balance(c.Context(), accountID)
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to fetch balance", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Balance", fiber.Map{
			"accountId": accountID.String(),
			"balance":   balance.StringFixed(4),
		})
	}
}

// Close returns the handler closing an account.
func Close(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		accountID, err := parseAccountID(c)
		if err != nil {
			return err
		}
		if err := accountSvc.Close(c.Context(), accountID, userID); err != nil {
			return common.DomainErrorJSON(c, "Failed to close account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account closed", nil)
	}
}

// GetTransactions returns the handler listing an account's ledger entries.
func GetTransactions(accountSvc *accountsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := common.CurrentUserID(c, authSvc)
		if err != nil {
			return common.DomainErrorJSON(c, "Unauthorized", err)
		}
		accountID, err := parseAccountID(c)
		if err != nil {
			return err
		}
		limit, offset := common.ParsePage(c)
		txs, err := accountSvc.Transactions(c.Context(), accountID, userID,
			repository.Page{Limit: limit, Offset: offset})
		if err != nil {
			return common.DomainErrorJSON(c, "Failed to list transactions", err)
		}
		out := make([]transactionweb.TransactionResponse, 0, len(txs))
		for _, tx := range txs {
			out = append(out, transactionweb.ToResponse(tx))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", out)
	}
}

func parseAccountID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, common.ErrorResponseJSON(c, fiber.StatusBadRequest,
			"Invalid account id", "account id must be a UUID")
	}
	return id, nil
}
