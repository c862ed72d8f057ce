package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")
	// ErrAccountNotFound is returned when an account cannot be found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUserNotFound is returned when a user cannot be found.
	ErrUserNotFound = errors.New("user not found")
	// ErrTransactionNotFound is returned when a transaction cannot be found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInsufficientFunds is returned when an account has insufficient funds
	// for a withdrawal or transfer.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidOperation is returned on validation failures, authorization
	// failures, and illegal state transitions.
	ErrInvalidOperation = errors.New("invalid account operation")
	// ErrIntegrityConflict is returned when a storage-level uniqueness or
	// integrity constraint is violated (e.g., duplicate transaction reference).
	ErrIntegrityConflict = errors.New("integrity conflict")
	// ErrUnauthorized is returned when a caller's identity cannot be verified.
	ErrUnauthorized = errors.New("unauthorized")
)
