package usecase

import "errors"

var (
	// ErrCheckPanicked wraps a panic recovered from a check.
	ErrCheckPanicked = errors.New("check panicked")
)

// Check names, used in logs, metrics and reports.
const (
	CheckDanglingAccounts     = "dangling-accounts"
	CheckWrongTransfers       = "wrong-transfers"
	CheckTaxRefundSecurity    = "tax-refund-security"
	CheckCashSecurities       = "cash-securities"
	CheckOrphanedSecurities   = "orphaned-securities"
	CheckSecurityUUID         = "security-uuid"
	CheckNullPrices           = "null-prices"
	CheckExDate               = "ex-date"
	CheckReferenceAccount     = "reference-account"
	CheckMissingCurrency      = "missing-currency"
	CheckTransactionCurrency  = "transaction-currency"
	CheckCrossEntries         = "cross-entries"
	CheckNegativeExchangeRate = "negative-exchange-rate"
	CheckSharesHeld           = "shares-held"
	CheckMissingDate          = "missing-date"
)

// RecoveredMarker is appended to the name of accounts re-added by the
// dangling-accounts check.
const RecoveredMarker = "(recovered)"
