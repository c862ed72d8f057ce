package domain

import "time"

// TransactionAudit is one audit-trail row written by the audit event
// consumer for every processed transaction outcome.
type TransactionAudit struct {
	ID            int64
	TransactionID string
	EventType     string
	Details       string
	CreatedAt     time.Time
}
