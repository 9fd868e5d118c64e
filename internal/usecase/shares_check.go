package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/ledgercheck/internal/domain"
)

// SharesHeldCheck replays each portfolio's transactions per security and
// reports holdings whose running share balance drops below zero. The issues
// carry no fixes: which transaction is wrong cannot be inferred.
type SharesHeldCheck struct{}

// NewSharesHeldCheck creates a new shares held check
func NewSharesHeldCheck() *SharesHeldCheck {
	return &SharesHeldCheck{}
}

// Name returns the check name.
func (c *SharesHeldCheck) Name() string {
	return CheckSharesHeld
}

type holding struct {
	security *domain.Security
	balance  decimal.Decimal
	lowest   decimal.Decimal
	lowestAt *domain.PortfolioTransaction
}

// Execute reports one issue per portfolio and security, carrying the lowest
// running balance.
func (c *SharesHeldCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	var issues []domain.Issue

	for _, p := range l.Portfolios {
		var order []string
		holdings := make(map[string]*holding)

		for _, t := range p.Transactions {
			sign := t.Type.SharesSign()
			if t.Security == nil || sign == 0 {
				continue
			}

			key := securityKey(t.Security)
			h, ok := holdings[key]
			if !ok {
				h = &holding{security: t.Security}
				holdings[key] = h
				order = append(order, key)
			}

			h.balance = h.balance.Add(t.Shares.Mul(decimal.NewFromInt(int64(sign))))
			if h.balance.LessThan(h.lowest) {
				h.lowest = h.balance
				h.lowestAt = t
			}
		}

		for _, key := range order {
			h := holdings[key]
			if !h.lowest.IsNegative() {
				continue
			}
			issue := transactionIssue(p, &h.lowestAt.Transaction,
				fmt.Sprintf("Holding of %s in portfolio %q drops to %s shares", h.security.Label(), p.Name, h.lowest))
			quantity := h.lowest
			issue.Quantity = &quantity
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// securityKey groups securities by UUID, or by object when there is none.
func securityKey(s *domain.Security) string {
	if s.UUID != "" {
		return "uuid:" + s.UUID
	}
	return fmt.Sprintf("ptr:%p", s)
}
