// Package consumer holds the event consumers hanging off the bus: audit
// persistence and transaction notifications. Consumer failures are logged
// and never reach the financial caller; delivery is at-least-once, so both
// consumers key their work on the transaction id.
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/amirasaad/banking/pkg/domain"
	"github.com/amirasaad/banking/pkg/domain/events"
	"github.com/amirasaad/banking/pkg/eventbus"
	"github.com/amirasaad/banking/pkg/repository"
)

// AuditConsumer persists one audit row per transaction outcome event.
type AuditConsumer struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewAuditConsumer creates the audit consumer.
func NewAuditConsumer(uow repository.UnitOfWork, logger *slog.Logger) *AuditConsumer {
	return &AuditConsumer{uow: uow, logger: logger.With("consumer", "audit")}
}

// Handle implements eventbus.HandlerFunc for transaction outcome events.
func (c *AuditConsumer) Handle(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(*events.TransactionEvent)
	if !ok {
		return nil
	}
	details, err := json.Marshal(e)
	if err != nil {
		c.logger.Error("failed to encode audit details", "transactionID", e.TransactionID, "error", err)
		return err
	}
	err = c.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		audits, err := uow.AuditRepository()
		if err != nil {
			return err
		}
		return audits.Create(ctx, &domain.TransactionAudit{
			TransactionID: e.TransactionID,
			EventType:     e.Type,
			Details:       string(details),
			CreatedAt:     e.Timestamp,
		})
	})
	if err != nil {
		c.logger.Error("failed to persist audit row", "transactionID", e.TransactionID, "error", err)
		return err
	}
	c.logger.Debug("audit row written", "transactionID", e.TransactionID)
	return nil
}
