package usecase

import (
	"fmt"

	"github.com/iho/ledgercheck/internal/domain"
)

// NegativeExchangeRateCheck reports transactions carrying a unit with a
// negative exchange rate.
type NegativeExchangeRateCheck struct{}

// NewNegativeExchangeRateCheck creates a new negative exchange rate check
func NewNegativeExchangeRateCheck() *NegativeExchangeRateCheck {
	return &NegativeExchangeRateCheck{}
}

// Name returns the check name.
func (c *NegativeExchangeRateCheck) Name() string {
	return CheckNegativeExchangeRate
}

// Execute reports one issue per affected transaction.
func (c *NegativeExchangeRateCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	var issues []domain.Issue
	for owner, t := range l.Transactions() {
		if skipExchangeRateScan(l, owner, t) || !hasNegativeRate(t.Units) {
			continue
		}
		issues = append(issues, transactionIssue(owner, t,
			fmt.Sprintf("%s in %s %q has a negative exchange rate", t.Type, owner.OwnerKind(), owner.OwnerName()),
			deleteFix(refTo(owner, t))))
	}
	return issues, nil
}

// skipExchangeRateScan excludes inbound transfers of either container and
// the account side of paired trades.
func skipExchangeRateScan(l *domain.Ledger, owner domain.Owner, t *domain.Transaction) bool {
	if t.Type == domain.TypeTransferIn {
		return true
	}
	return owner.OwnerKind() == domain.EntityAccount && t.Type.IsTrade() && l.Linked(owner, t)
}

func hasNegativeRate(units []domain.Unit) bool {
	for _, u := range units {
		if u.ExchangeRate != nil && u.ExchangeRate.IsNegative() {
			return true
		}
	}
	return false
}
