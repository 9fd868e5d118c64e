package domain

import "errors"

var (
	// Lookup errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrPortfolioNotFound   = errors.New("portfolio not found")
	ErrSecurityNotFound    = errors.New("security not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCrossEntryNotFound  = errors.New("cross entry not found")

	// Insertion errors
	ErrSameOwner              = errors.New("counterparts must live in different containers")
	ErrInvalidTransactionType = errors.New("transaction type not allowed here")
	ErrMissingOwner           = errors.New("owner is required")
	ErrSecurityRequired       = errors.New("security is required")
	ErrInvalidCrossEntryShape = errors.New("cross entry legs do not match its kind")

	// Issue / fix errors
	ErrStaleFix      = errors.New("fix no longer applies to the ledger")
	ErrIssueNotFound = errors.New("issue not found")
	ErrFixNotFound   = errors.New("fix not found")
)
