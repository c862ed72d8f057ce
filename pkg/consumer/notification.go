package consumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/banking/pkg/domain/events"
	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/amirasaad/banking/pkg/notification"
	"github.com/amirasaad/banking/pkg/service/user"
)

// NotificationConsumer emails the owner of the affected account about each
// transaction outcome.
type NotificationConsumer struct {
	users  *user.Service
	emails *notification.EmailSender
	logger *slog.Logger
}

// NewNotificationConsumer creates the notification consumer.
func NewNotificationConsumer(users *user.Service, emails *notification.EmailSender, logger *slog.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		users:  users,
		emails: emails,
		logger: logger.With("consumer", "notification"),
	}
}

// Handle implements eventbus.HandlerFunc for transaction outcome events.
func (c *NotificationConsumer) Handle(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(*events.TransactionEvent)
	if !ok {
		return nil
	}
	// Notify the debited side when there is one, the credited side otherwise.
	accountNumber := e.FromAccount
	if accountNumber == "" {
		accountNumber = e.ToAccount
	}
	if accountNumber == "" {
		return nil
	}
	recipient, err := c.users.EmailForAccountNumber(ctx, accountNumber)
	if err != nil {
		c.logger.Error("failed to resolve notification recipient",
			"transactionID", e.TransactionID, "error", err)
		return err
	}
	body := fmt.Sprintf(
		"Transaction Alert!\nType: %s\nAmount: %s %s\nAccount: %s\nStatus: %s\nDescription: %s",
		e.Type, e.Amount.StringFixed(2), e.Currency,
		maskAccountNumber(accountNumber), e.Status, e.Description,
	)
	c.emails.Send(recipient, "Transaction Notification", body)
	c.logger.Debug("transaction notification sent", "transactionID", e.TransactionID)
	return nil
}

func maskAccountNumber(accountNumber string) string {
	if len(accountNumber) < 4 {
		return "****"
	}
	return "****" + accountNumber[len(accountNumber)-4:]
}
