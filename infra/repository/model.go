// Package repository implements the data-access contracts from
// pkg/repository on top of GORM and Postgres.
package repository

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// JSONMap stores an opaque key-value mapping in a jsonb column.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported jsonb source type %T", value)
}

// User is the users table model.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	FirstName    string
	LastName     string
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string { return "users" }

// Account is the accounts table model.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountNumber string          `gorm:"uniqueIndex;not null"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type          string          `gorm:"not null"`
	Balance       decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	Status        string          `gorm:"not null;default:'ACTIVE'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string { return "accounts" }

// Transaction is the transactions table model.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference       string          `gorm:"uniqueIndex;not null"`
	FromAccountID   *uuid.UUID      `gorm:"type:uuid;index"`
	ToAccountID     *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:numeric(19,4);not null"`
	Currency        string          `gorm:"type:varchar(3);not null"`
	Type            string          `gorm:"not null"`
	Status          string          `gorm:"not null"`
	Description     string          `gorm:"type:text"`
	Metadata        JSONMap         `gorm:"type:jsonb"`
	Recurring       bool            `gorm:"not null;default:false"`
	Frequency       string
	NextPaymentDate *time.Time `gorm:"index"`
	LastPaymentDate *time.Time
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string { return "transactions" }

// TransactionAudit is the transaction_audits table model.
type TransactionAudit struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	TransactionID string `gorm:"index;not null"`
	EventType     string `gorm:"not null"`
	Details       string `gorm:"type:text"`
	CreatedAt     time.Time
}

// TableName specifies the table name for the TransactionAudit model.
func (TransactionAudit) TableName() string { return "transaction_audits" }
