package usecase

import "time"

// CheckConfig parameterizes the default check list.
type CheckConfig struct {
	// HomeCurrencies are offered first when a currency must be picked.
	HomeCurrencies []string
	// Now stamps missing dates. Defaults to time.Now.
	Now func() time.Time
}

// HealingChecks returns the auto-healing checks in the order they must run.
// Accounts and transfer types are repaired before securities are touched.
func HealingChecks() []Check {
	return []Check{
		NewDanglingAccountsCheck(),
		NewWrongTransfersCheck(),
		NewTaxRefundSecurityCheck(),
		NewCashSecuritiesCheck(),
		NewOrphanedSecuritiesCheck(),
		NewSecurityUUIDCheck(),
		NewNullPricesCheck(),
		NewExDateCheck(),
	}
}

// ValidatorChecks returns the reporting checks in presentation order. The
// cross entry engine relies on the healing checks having run first, and runs
// before the transaction validators since it rewrites the orphans it pairs.
func ValidatorChecks(cfg CheckConfig) []Check {
	return []Check{
		NewReferenceAccountCheck(),
		NewMissingCurrencyCheck(cfg.HomeCurrencies),
		NewCrossEntryCheck(),
		NewTransactionCurrencyCheck(),
		NewNegativeExchangeRateCheck(),
		NewSharesHeldCheck(),
		NewMissingDateCheck(cfg.Now),
	}
}

// DefaultChecks returns every check: healing first, then validators.
func DefaultChecks(cfg CheckConfig) []Check {
	return append(HealingChecks(), ValidatorChecks(cfg)...)
}
