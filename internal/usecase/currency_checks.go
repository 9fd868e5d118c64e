package usecase

import (
	"fmt"

	"github.com/iho/ledgercheck/internal/domain"
)

// MissingCurrencyCheck reports accounts and traded securities without a
// currency. It raises a single ledger-wide issue whose fixes assign one
// currency to all of them.
type MissingCurrencyCheck struct {
	homeCurrencies []string
}

// NewMissingCurrencyCheck creates a check ranking homeCurrencies first in
// the offered fixes.
func NewMissingCurrencyCheck(homeCurrencies []string) *MissingCurrencyCheck {
	return &MissingCurrencyCheck{homeCurrencies: homeCurrencies}
}

// Name returns the check name.
func (c *MissingCurrencyCheck) Name() string {
	return CheckMissingCurrency
}

// Execute reports the gap, if any.
func (c *MissingCurrencyCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	accounts, securities := withoutCurrency(l)
	if len(accounts) == 0 && len(securities) == 0 {
		return nil, nil
	}

	ranked := domain.RankCurrencies(c.homeCurrencies)
	fixes := make([]domain.Fix, 0, len(ranked))
	for _, code := range ranked {
		fixes = append(fixes, assignLedgerCurrencyFix(code))
	}

	return []domain.Issue{{
		Entity: domain.LedgerRef,
		Label:  fmt.Sprintf("%d account(s) and %d security(ies) have no currency", len(accounts), len(securities)),
		Fixes:  fixes,
	}}, nil
}

// withoutCurrency lists accounts and transacted securities with an empty
// currency.
func withoutCurrency(l *domain.Ledger) ([]*domain.Account, []*domain.Security) {
	var accounts []*domain.Account
	for _, a := range l.Accounts {
		if a.Currency == "" {
			accounts = append(accounts, a)
		}
	}

	var securities []*domain.Security
	seen := make(map[*domain.Security]bool)
	for _, t := range l.Transactions() {
		s := t.Security
		if s == nil || seen[s] {
			continue
		}
		seen[s] = true
		if s.Currency == "" {
			securities = append(securities, s)
		}
	}
	return accounts, securities
}

func assignLedgerCurrencyFix(code string) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Use %s", code),
		fmt.Sprintf("Assigned %s", code),
		func(l *domain.Ledger) error {
			accounts, securities := withoutCurrency(l)
			for _, a := range accounts {
				a.Currency = code
			}
			for _, s := range securities {
				s.Currency = code
			}
			return nil
		})
}

// TransactionCurrencyCheck reports transactions without a currency. Paired
// transactions are reported once per cross entry.
type TransactionCurrencyCheck struct{}

// NewTransactionCurrencyCheck creates a new transaction currency check
func NewTransactionCurrencyCheck() *TransactionCurrencyCheck {
	return &TransactionCurrencyCheck{}
}

// Name returns the check name.
func (c *TransactionCurrencyCheck) Name() string {
	return CheckTransactionCurrency
}

// Execute reports one issue per transaction or cross entry.
func (c *TransactionCurrencyCheck) Execute(l *domain.Ledger) ([]domain.Issue, error) {
	var issues []domain.Issue
	reported := make(map[string]bool)

	for owner, t := range l.Transactions() {
		if t.Currency != "" {
			continue
		}

		cOwner, ct, linked := l.Counterpart(owner, t)
		if linked {
			if reported[t.CrossEntryID] {
				continue
			}
			reported[t.CrossEntryID] = true
		}

		sides := []currencySide{{ref: refTo(owner, t), currency: expectedCurrency(owner, t)}}
		switch {
		case linked:
			sides = append(sides, currencySide{ref: refTo(cOwner, ct), currency: expectedCurrency(cOwner, ct)})
		case t.Type.IsTransfer():
			// the missing counterpart may live in any currency
			sides = append(sides, currencySide{})
		}

		var fixes []domain.Fix
		if code, ok := commonCurrency(sides); ok {
			fixes = append(fixes, assignTransactionCurrencyFix(code, sides))
		}
		fixes = append(fixes, deleteFix(refTo(owner, t)))

		issues = append(issues, transactionIssue(owner, t,
			fmt.Sprintf("%s in %s %q has no currency", t.Type, owner.OwnerKind(), owner.OwnerName()),
			fixes...))
	}
	return issues, nil
}

type currencySide struct {
	ref      transactionRef
	currency string
}

// expectedCurrency is the currency a transaction should carry given where it
// is booked: the account currency for cash, the security currency for shares.
func expectedCurrency(owner domain.Owner, t *domain.Transaction) string {
	switch o := owner.(type) {
	case *domain.Account:
		return o.Currency
	case *domain.Portfolio:
		if t.Security != nil {
			return t.Security.Currency
		}
	}
	return ""
}

func commonCurrency(sides []currencySide) (string, bool) {
	if len(sides) == 0 || sides[0].currency == "" {
		return "", false
	}
	for _, s := range sides[1:] {
		if s.currency != sides[0].currency {
			return "", false
		}
	}
	return sides[0].currency, true
}

func assignTransactionCurrencyFix(code string, sides []currencySide) domain.Fix {
	return domain.NewFix(
		fmt.Sprintf("Assign currency %s", code),
		fmt.Sprintf("Assigned currency %s", code),
		func(l *domain.Ledger) error {
			targets := make([]*domain.Transaction, 0, len(sides))
			for _, s := range sides {
				_, t, err := s.ref.resolve(l)
				if err != nil {
					return err
				}
				targets = append(targets, t)
			}
			for _, t := range targets {
				t.Currency = code
			}
			return nil
		})
}
