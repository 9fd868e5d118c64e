package usecase

import (
	"errors"
	"fmt"

	"github.com/iho/ledgercheck/internal/domain"
)

var errReferenceAccountSet = errors.New("portfolio already has a reference account")

// ReferenceAccountCheck reports portfolios without a reference account.
type ReferenceAccountCheck struct{}

// NewReferenceAccountCheck creates a new reference account check
func NewReferenceAccountCheck() *ReferenceAccountCheck {
	return &ReferenceAccountCheck{}
}

// Name returns the check name.
func (c *ReferenceAccountCheck) Name() string {
	return CheckReferenceAccount
}

// Execute reports each portfolio lacking a reference account.
func (c *ReferenceAccountCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	var issues []domain.Issue
	for _, p := range l.Portfolios {
		if p.ReferenceAccount != nil {
			continue
		}

		fixes := []domain.Fix{createReferenceAccountFix(p.ID, referenceAccountName(p.Name))}
		for _, a := range l.Accounts {
			fixes = append(fixes, assignReferenceAccountFix(p.ID, a.ID, a.Name))
		}

		issues = append(issues, domain.Issue{
			Entity: domain.RefOf(p),
			Label:  fmt.Sprintf("Portfolio %q has no reference account", p.Name),
			Fixes:  fixes,
		})
	}
	return issues, nil
}

func referenceAccountName(portfolioName string) string {
	return portfolioName + " (reference account)"
}

func unreferencedPortfolio(l *domain.Ledger, id string) (*domain.Portfolio, error) {
	p, err := l.Portfolio(id)
	if err != nil {
		return nil, stale(err)
	}
	if p.ReferenceAccount != nil {
		return nil, stale(errReferenceAccountSet)
	}
	return p, nil
}

func createReferenceAccountFix(portfolioID, name string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Create account %q", name),
		fmt.Sprintf("Created account %q", name),
		func(l *domain.Ledger) error {
			p, err := unreferencedPortfolio(l, portfolioID)
			if err != nil {
				return err
			}
			a := &domain.Account{Name: name, Currency: l.BaseCurrency}
			l.AddAccount(a)
			p.ReferenceAccount = a
			return nil
		})
}

func assignReferenceAccountFix(portfolioID, accountID, accountName string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Use account %q", accountName),
		fmt.Sprintf("Assigned account %q", accountName),
		func(l *domain.Ledger) error {
			p, err := unreferencedPortfolio(l, portfolioID)
			if err != nil {
				return err
			}
			a, err := l.Account(accountID)
			if err != nil {
				return stale(err)
			}
			p.ReferenceAccount = a
			return nil
		})
}
